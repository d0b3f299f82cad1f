// Package pipeline coordinates a distribution from creation to the terminal
// delivery status.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pressreach-backend/internal/attachments"
	"github.com/angelmondragon/pressreach-backend/internal/branding"
	"github.com/angelmondragon/pressreach-backend/internal/distributions"
	"github.com/angelmondragon/pressreach-backend/internal/render"
	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/mailer"
	"github.com/angelmondragon/pressreach-backend/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFanOut bounds concurrent SMTP sends when Options leaves it unset.
	DefaultFanOut = 6

	msgMissingEmail = "Email адрес отсутствует"
)

type distributionStore interface {
	Create(ctx context.Context, tenant users.Identity, p distributions.CreateParams) (*models.Distribution, error)
	GetForTenant(ctx context.Context, userID, id uuid.UUID) (*models.Distribution, error)
	ExistsForTenant(ctx context.Context, userID, id uuid.UUID) (*models.Distribution, error)
	ListForTenant(ctx context.Context, userID uuid.UUID, f distributions.ListFilter) (*distributions.ListResult, error)
	Start(ctx context.Context, userID, id uuid.UUID) error
	AppendDeliveryLog(ctx context.Context, distributionID uuid.UUID, o distributions.Outcome) (*models.DeliveryLog, error)
	Finalise(ctx context.Context, distributionID uuid.UUID) (*models.Distribution, error)
}

type outletResolver interface {
	Resolve(ctx context.Context, ids []uuid.UUID) ([]models.MediaOutlet, error)
}

type brandingResolver interface {
	Resolve(ctx context.Context, user *models.User) (*branding.Resolved, error)
}

// Options tunes the coordinator.
type Options struct {
	FanOut    int
	FromEmail string
	Metrics   *metrics.DeliveryMetrics
}

// Service is the distribution lifecycle as seen by one tenant. Every method
// reports a distribution the tenant does not own as NOT_FOUND.
type Service interface {
	Create(ctx context.Context, tenant *models.User, in CreateInput) (*Created, error)
	Get(ctx context.Context, tenant *models.User, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, tenant *models.User, f distributions.ListFilter) (*Page, error)
	Preview(ctx context.Context, tenant *models.User, id uuid.UUID) (*Preview, error)
	Send(ctx context.Context, tenant *models.User, id uuid.UUID) (*SendResult, error)

	Attach(ctx context.Context, tenant *models.User, id uuid.UUID, upload attachments.Upload) (*attachments.FileDTO, error)
	Files(ctx context.Context, tenant *models.User, id uuid.UUID) ([]attachments.FileDTO, error)
	Download(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) (*attachments.Download, error)
	DeleteFile(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) error
}

type service struct {
	dists     distributionStore
	outlets   outletResolver
	branding  brandingResolver
	files     attachments.Service
	mail      mailer.Sender
	logg      *logger.Logger
	metrics   *metrics.DeliveryMetrics
	fanOut    int
	fromEmail string
	now       func() time.Time
}

// NewService wires the coordinator.
func NewService(
	dists distributionStore,
	outlets outletResolver,
	brandingSvc brandingResolver,
	files attachments.Service,
	mail mailer.Sender,
	logg *logger.Logger,
	opts Options,
) (Service, error) {
	if dists == nil {
		return nil, fmt.Errorf("distribution repository required")
	}
	if outlets == nil {
		return nil, fmt.Errorf("outlet resolver required")
	}
	if brandingSvc == nil {
		return nil, fmt.Errorf("branding resolver required")
	}
	if files == nil {
		return nil, fmt.Errorf("attachments service required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	fanOut := opts.FanOut
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	return &service{
		dists:     dists,
		outlets:   outlets,
		branding:  brandingSvc,
		files:     files,
		mail:      mail,
		logg:      logg,
		metrics:   opts.Metrics,
		fanOut:    fanOut,
		fromEmail: opts.FromEmail,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, tenant *models.User, in CreateInput) (*Created, error) {
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "press_release_title is required")
	}

	outlets, err := s.outlets.Resolve(ctx, in.MediaIDs)
	if err != nil {
		return nil, err
	}
	resolved, err := s.branding.Resolve(ctx, tenant)
	if err != nil {
		return nil, err
	}

	body := render.Input{Title: in.Title, Body: in.Content, Branding: resolved.Branding}
	data, err := encodeData(in.Data, render.HTML(body), render.PlainText(body), resolved.Stored)
	if err != nil {
		return nil, err
	}

	d, err := s.dists.Create(ctx, identityOf(tenant), distributions.CreateParams{
		Title:        in.Title,
		Content:      in.Content,
		Data:         data,
		CompanyName:  in.CompanyName,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		ScheduledAt:  in.ScheduledAt,
		Outlets:      outlets,
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"distribution_id": d.ID.String(),
		"media_count":     d.TotalMediaCount,
		"branding_used":   resolved.Stored,
	})
	s.logg.Info(ctx, "pipeline.create")

	return &Created{
		ID:              d.ID,
		Status:          d.Status,
		TotalPrice:      d.TotalPrice,
		TotalMediaCount: d.TotalMediaCount,
		CreatedAt:       d.CreatedAt,
	}, nil
}

func (s *service) Get(ctx context.Context, tenant *models.User, id uuid.UUID) (*Detail, error) {
	d, err := s.load(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return detailFromModel(d), nil
}

func (s *service) List(ctx context.Context, tenant *models.User, f distributions.ListFilter) (*Page, error) {
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant required")
	}
	res, err := s.dists.ListForTenant(ctx, tenant.ID, f)
	if err != nil {
		return nil, err
	}
	page := &Page{Items: make([]Summary, 0, len(res.Items)), NextCursor: res.NextCursor}
	for _, d := range res.Items {
		page.Items = append(page.Items, summaryFromModel(d))
	}
	return page, nil
}

func (s *service) Preview(ctx context.Context, tenant *models.User, id uuid.UUID) (*Preview, error) {
	d, err := s.load(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	resolved, err := s.branding.Resolve(ctx, tenant)
	if err != nil {
		return nil, err
	}
	bodies, err := decodeBodies(d.PressReleaseData)
	if err != nil {
		return nil, err
	}
	html := bodies.EmailHTML
	if html == "" {
		html = render.HTML(render.Input{Title: d.PressReleaseTitle, Body: d.PressReleaseContent, Branding: resolved.Branding})
	}

	p := &Preview{
		DistributionID: d.ID,
		HTML:           html,
		Subject:        d.PressReleaseTitle,
		SenderName:     resolved.Branding.CompanyName,
		SenderEmail:    s.fromEmail,
		MediaOutlets:   make([]OutletSummary, 0, len(d.MediaOutlets)),
		Files:          make([]attachments.FileDTO, 0, len(d.Files)),
		Branding:       resolved.Branding,
	}
	for _, m := range d.MediaOutlets {
		p.MediaOutlets = append(p.MediaOutlets, OutletSummary{ID: m.ID, Name: m.Name, Email: m.Email})
	}
	for _, f := range d.Files {
		p.Files = append(p.Files, attachments.FromModel(f))
	}
	return p, nil
}

// Send delivers the distribution to every linked outlet. Only one caller
// can move a distribution out of pending; the others get ALREADY_SENT.
// Transport failures are recorded per outlet and never fail the call.
func (s *service) Send(ctx context.Context, tenant *models.User, id uuid.UUID) (*SendResult, error) {
	d, err := s.load(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if d.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadySent, "distribution already sent")
	}

	bodies, err := decodeBodies(d.PressReleaseData)
	if err != nil {
		return nil, err
	}
	files, err := s.files.Materialise(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	resolved, err := s.branding.Resolve(ctx, tenant)
	if err != nil {
		return nil, err
	}

	if err := s.dists.Start(ctx, tenant.ID, d.ID); err != nil {
		return nil, err
	}

	// Deliveries outlive the request once the distribution is processing.
	sendCtx := s.logg.WithFields(context.WithoutCancel(ctx), map[string]any{
		"distribution_id": d.ID.String(),
		"media_count":     len(d.MediaOutlets),
		"attachments":     len(files),
	})
	s.logg.Info(sendCtx, "pipeline.send.start")

	envelope := mailer.Envelope{
		Subject:     d.PressReleaseTitle,
		HTML:        bodies.EmailHTML,
		Plain:       bodies.EmailPlain,
		Attachments: files,
		DisplayName: resolved.Branding.CompanyName,
	}

	results := make([]Delivery, len(d.MediaOutlets))
	g, gctx := errgroup.WithContext(sendCtx)
	g.SetLimit(s.fanOut)
	for i, outlet := range d.MediaOutlets {
		g.Go(func() error {
			res, err := s.deliver(gctx, d.ID, outlet, envelope)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logg.Error(sendCtx, "pipeline.send.aborted", err)
		return nil, err
	}

	final, err := s.dists.Finalise(sendCtx, d.ID)
	if err != nil {
		s.logg.Error(sendCtx, "pipeline.finalise_failed", err)
		return nil, err
	}
	s.metrics.ObserveFinalised(final.Status.String())

	doneCtx := s.logg.WithFields(sendCtx, map[string]any{
		"status":       final.Status.String(),
		"sent_count":   final.SentCount,
		"failed_count": final.FailedCount,
	})
	s.logg.Info(doneCtx, "pipeline.send.complete")

	return &SendResult{
		DistributionID: final.ID,
		Total:          final.TotalMediaCount,
		SentCount:      final.SentCount,
		FailedCount:    final.FailedCount,
		Status:         final.Status,
		Results:        results,
	}, nil
}

// deliver performs one outlet's attempt and records it. The returned error
// is a repository failure; transport failures are part of the Delivery.
func (s *service) deliver(ctx context.Context, distributionID uuid.UUID, outlet models.MediaOutlet, env mailer.Envelope) (Delivery, error) {
	email := strings.TrimSpace(outlet.Email)
	res := Delivery{MediaOutletID: outlet.ID, MediaName: outlet.Name, Email: email}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	outcome := distributions.Outcome{
		OutletID:     outlet.ID,
		ContactType:  enums.ContactTypeEmail,
		ContactValue: email,
	}
	if email == "" {
		outcome.Status = enums.DeliveryStatusFailed
		outcome.ErrorMessage = msgMissingEmail
	} else {
		env.To = email
		started := time.Now()
		err := s.mail.Send(ctx, env)
		elapsed := time.Since(started)
		if err != nil {
			outcome.Status = enums.DeliveryStatusFailed
			outcome.ErrorMessage = transportError(err)
		} else {
			sentAt := s.now()
			outcome.Status = enums.DeliveryStatusSent
			outcome.SentAt = &sentAt
			outcome.ResponseData = map[string]any{"transport": "smtp", "duration_ms": elapsed.Milliseconds()}
		}
		s.metrics.ObserveSend(outcome.Status.String(), elapsed)
	}

	res.Status = outcome.Status
	res.Error = outcome.ErrorMessage

	logCtx := s.logg.WithField(s.logg.WithOutletID(ctx, outlet.ID.String()), "status", outcome.Status.String())
	if _, err := s.dists.AppendDeliveryLog(ctx, distributionID, outcome); err != nil {
		s.logg.Error(logCtx, "pipeline.delivery.record_failed", err)
		return res, err
	}
	s.metrics.ObserveDelivery(outcome.Status.String())

	if outcome.Status == enums.DeliveryStatusSent {
		s.logg.Info(logCtx, "pipeline.delivery.sent")
	} else {
		s.logg.Warn(s.logg.WithField(logCtx, "error_message", outcome.ErrorMessage), "pipeline.delivery.failed")
	}
	return res, nil
}

func (s *service) Attach(ctx context.Context, tenant *models.User, id uuid.UUID, upload attachments.Upload) (*attachments.FileDTO, error) {
	if _, err := s.editable(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.files.Attach(ctx, id, upload)
}

func (s *service) Files(ctx context.Context, tenant *models.User, id uuid.UUID) ([]attachments.FileDTO, error) {
	if _, err := s.owned(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.files.List(ctx, id)
}

func (s *service) Download(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) (*attachments.Download, error) {
	if _, err := s.owned(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.files.Fetch(ctx, id, fileID)
}

func (s *service) DeleteFile(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) error {
	if _, err := s.editable(ctx, tenant, id); err != nil {
		return err
	}
	return s.files.Delete(ctx, id, fileID)
}

func (s *service) load(ctx context.Context, tenant *models.User, id uuid.UUID) (*models.Distribution, error) {
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant required")
	}
	return s.dists.GetForTenant(ctx, tenant.ID, id)
}

func (s *service) owned(ctx context.Context, tenant *models.User, id uuid.UUID) (*models.Distribution, error) {
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant required")
	}
	return s.dists.ExistsForTenant(ctx, tenant.ID, id)
}

// editable admits attachment changes only before the send starts.
func (s *service) editable(ctx context.Context, tenant *models.User, id uuid.UUID) (*models.Distribution, error) {
	d, err := s.owned(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if d.Status != enums.DistributionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadySent, "attachments cannot change after sending started")
	}
	return d, nil
}

func identityOf(u *models.User) users.Identity {
	return users.Identity{
		ClerkUserID: u.ClerkUserID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
	}
}

func transportError(err error) string {
	var sendErr *mailer.SendError
	if errors.As(err, &sendErr) && sendErr.Err != nil {
		return sendErr.Err.Error()
	}
	return err.Error()
}
