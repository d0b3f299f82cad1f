package distributions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/db"
	"github.com/angelmondragon/pressreach-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var tenant = users.Identity{ClerkUserID: "user_1", Email: "ivan@acme.test"}

func newRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	return NewRepository(db.NewFromConn(conn)), conn
}

func createWith(t *testing.T, repo *Repository, outlets ...models.MediaOutlet) *models.Distribution {
	t.Helper()
	d, err := repo.Create(context.Background(), tenant, CreateParams{
		Title:   "Launch",
		Content: "Body",
		Data:    `{"email_html":"<p>x</p>"}`,
		Outlets: outlets,
	})
	require.NoError(t, err)
	return d
}

func TestCreateLinksOutletsAndCounters(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test", dbtest.WithPrice("1000", "1.2"))
	b := dbtest.Outlet(t, conn, "B", "b@y.test", dbtest.WithPrice("5000", "1.5"), dbtest.Premium())

	d := createWith(t, repo, *a, *b)
	assert.Equal(t, enums.DistributionStatusPending, d.Status)
	assert.Equal(t, 2, d.TotalMediaCount)
	assert.Zero(t, d.SentCount)
	assert.Zero(t, d.FailedCount)
	assert.True(t, decimal.RequireFromString("12450").Equal(d.TotalPrice), d.TotalPrice.String())

	var links int64
	require.NoError(t, conn.Table("distribution_media").Where("distribution_id = ?", d.ID).Count(&links).Error)
	assert.EqualValues(t, 2, links)

	var user models.User
	require.NoError(t, conn.Where("clerk_user_id = ?", tenant.ClerkUserID).First(&user).Error)
	assert.Equal(t, 1, user.TotalReleases)
	assert.Equal(t, 1, user.TotalDistributions)
	assert.Equal(t, user.ID, d.UserID)

	var outlets int64
	require.NoError(t, conn.Model(&models.MediaOutlet{}).Count(&outlets).Error)
	assert.EqualValues(t, 2, outlets, "linking must not duplicate outlets")
}

func TestCreateRequiresOutlets(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.Create(context.Background(), tenant, CreateParams{Title: "T"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetForTenantOwnership(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	d := createWith(t, repo, *a)

	got, err := repo.GetForTenant(context.Background(), d.UserID, d.ID)
	require.NoError(t, err)
	require.Len(t, got.MediaOutlets, 1)
	assert.Equal(t, a.ID, got.MediaOutlets[0].ID)

	stranger := dbtest.Tenant(t, conn, "user_2", "other@x.test")
	_, err = repo.GetForTenant(context.Background(), stranger.ID, d.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = repo.GetForTenant(context.Background(), d.UserID, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListForTenantPagination(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		d := createWith(t, repo, *a)
		require.NoError(t, conn.Model(&models.Distribution{}).Where("id = ?", d.ID).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
		ids = append(ids, d.ID)
	}
	userID := mustUserID(t, conn)
	other := dbtest.Tenant(t, conn, "user_2", "o@x.test")

	page, err := repo.ListForTenant(context.Background(), userID, ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[2], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[1].ID)
	require.NotEmpty(t, page.NextCursor)

	page, err = repo.ListForTenant(context.Background(), userID, ListFilter{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.Empty(t, page.NextCursor)

	page, err = repo.ListForTenant(context.Background(), other.ID, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = repo.ListForTenant(context.Background(), userID, ListFilter{Cursor: "%%%"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListForTenantStatusFilter(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	first := createWith(t, repo, *a)
	createWith(t, repo, *a)
	require.NoError(t, repo.Start(context.Background(), first.UserID, first.ID))

	processing := enums.DistributionStatusProcessing
	page, err := repo.ListForTenant(context.Background(), first.UserID, ListFilter{Status: &processing})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)
}

func TestStartIsConditional(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	d := createWith(t, repo, *a)
	ctx := context.Background()

	require.NoError(t, repo.Start(ctx, d.UserID, d.ID))
	err := repo.Start(ctx, d.UserID, d.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAlreadySent))

	stranger := dbtest.Tenant(t, conn, "user_2", "o@x.test")
	err = repo.Start(ctx, stranger.ID, d.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestStartConcurrent(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	d := createWith(t, repo, *a)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		already int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Start(context.Background(), d.UserID, d.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case pkgerrors.IsCode(err, pkgerrors.CodeAlreadySent):
				already++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 5, already)
}

func TestAppendAndFinalise(t *testing.T) {
	cases := []struct {
		name     string
		statuses []enums.DeliveryStatus
		want     enums.DistributionStatus
	}{
		{"all sent", []enums.DeliveryStatus{enums.DeliveryStatusSent, enums.DeliveryStatusSent}, enums.DistributionStatusCompleted},
		{"mixed", []enums.DeliveryStatus{enums.DeliveryStatusSent, enums.DeliveryStatusFailed}, enums.DistributionStatusPartiallyCompleted},
		{"all failed", []enums.DeliveryStatus{enums.DeliveryStatusFailed, enums.DeliveryStatusFailed}, enums.DistributionStatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, conn := newRepo(t)
			outlets := []models.MediaOutlet{
				*dbtest.Outlet(t, conn, "A", "a@x.test"),
				*dbtest.Outlet(t, conn, "B", "b@y.test"),
			}
			d := createWith(t, repo, outlets...)
			ctx := context.Background()
			require.NoError(t, repo.Start(ctx, d.UserID, d.ID))

			for i, status := range tc.statuses {
				o := Outcome{OutletID: outlets[i].ID, ContactValue: outlets[i].Email, Status: status}
				if status == enums.DeliveryStatusFailed {
					o.ErrorMessage = "550 rejected"
				}
				_, err := repo.AppendDeliveryLog(ctx, d.ID, o)
				require.NoError(t, err)
			}

			final, err := repo.Finalise(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, final.Status)
			assert.NotNil(t, final.SentAt)
			assert.Equal(t, final.TotalMediaCount, final.SentCount+final.FailedCount)

			again, err := repo.Finalise(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, final.Status, again.Status)
			assert.Equal(t, final.SentAt.Unix(), again.SentAt.Unix())
		})
	}
}

func TestAppendDeliveryLogGuards(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	d := createWith(t, repo, *a)
	ctx := context.Background()

	_, err := repo.AppendDeliveryLog(ctx, d.ID, Outcome{OutletID: a.ID, Status: enums.DeliveryStatusSent})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "pending distribution rejects logs")

	var logs int64
	require.NoError(t, conn.Model(&models.DeliveryLog{}).Count(&logs).Error)
	assert.Zero(t, logs, "rejected append rolls back the insert")

	require.NoError(t, repo.Start(ctx, d.UserID, d.ID))
	_, err = repo.AppendDeliveryLog(ctx, d.ID, Outcome{OutletID: a.ID, Status: enums.DeliveryStatusPending})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	entry, err := repo.AppendDeliveryLog(ctx, d.ID, Outcome{OutletID: a.ID, ContactValue: "a@x.test", Status: enums.DeliveryStatusSent,
		ResponseData: map[string]any{"transport": "smtp"}})
	require.NoError(t, err)
	assert.Equal(t, enums.ContactTypeEmail, entry.ContactType)

	_, err = repo.AppendDeliveryLog(ctx, d.ID, Outcome{OutletID: a.ID, Status: enums.DeliveryStatusFailed})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var stored models.Distribution
	require.NoError(t, conn.First(&stored, "id = ?", d.ID).Error)
	assert.Equal(t, 1, stored.SentCount)
	assert.Equal(t, 0, stored.FailedCount)
}

func TestFinaliseRequiresAllLogs(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	b := dbtest.Outlet(t, conn, "B", "b@y.test")
	d := createWith(t, repo, *a, *b)
	ctx := context.Background()

	_, err := repo.Finalise(ctx, d.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "pending cannot finalise")

	require.NoError(t, repo.Start(ctx, d.UserID, d.ID))
	_, err = repo.AppendDeliveryLog(ctx, d.ID, Outcome{OutletID: a.ID, Status: enums.DeliveryStatusSent})
	require.NoError(t, err)

	_, err = repo.Finalise(ctx, d.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestFinalStatus(t *testing.T) {
	assert.Equal(t, enums.DistributionStatusCompleted, FinalStatus(3, 0))
	assert.Equal(t, enums.DistributionStatusFailed, FinalStatus(0, 3))
	assert.Equal(t, enums.DistributionStatusPartiallyCompleted, FinalStatus(1, 2))
}

func mustUserID(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	var user models.User
	require.NoError(t, conn.Where("clerk_user_id = ?", tenant.ClerkUserID).First(&user).Error)
	return user.ID
}

func TestDistributionIDs(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	d := createWith(t, repo, *a)
	gone := uuid.New()

	live, err := repo.DistributionIDs(context.Background(), []uuid.UUID{d.ID, gone})
	require.NoError(t, err)
	assert.Contains(t, live, d.ID)
	assert.NotContains(t, live, gone)

	empty, err := repo.DistributionIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStaleProcessing(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	ctx := context.Background()

	stale := createWith(t, repo, *a)
	fresh := createWith(t, repo, *a)
	pending := createWith(t, repo, *a)
	for _, d := range []*models.Distribution{stale, fresh} {
		require.NoError(t, repo.Start(ctx, d.UserID, d.ID))
	}
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, conn.Model(&models.Distribution{}).Where("id IN ?", []uuid.UUID{stale.ID, pending.ID}).UpdateColumn("updated_at", old).Error)

	ids, err := repo.StaleProcessing(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{stale.ID}, ids)
}

func TestFailUnrecordedFinalisesInterruptedSend(t *testing.T) {
	repo, conn := newRepo(t)
	a := dbtest.Outlet(t, conn, "A", "a@x.test")
	b := dbtest.Outlet(t, conn, "B", "b@y.test")
	c := dbtest.Outlet(t, conn, "C", "c@z.test")
	d := createWith(t, repo, *a, *b, *c)
	ctx := context.Background()

	_, err := repo.FailUnrecorded(ctx, d.ID, "interrupted")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "pending is not recoverable")

	require.NoError(t, repo.Start(ctx, d.UserID, d.ID))
	_, err = repo.AppendDeliveryLog(ctx, d.ID, Outcome{OutletID: a.ID, Status: enums.DeliveryStatusSent})
	require.NoError(t, err)

	final, err := repo.FailUnrecorded(ctx, d.ID, "interrupted")
	require.NoError(t, err)
	assert.Equal(t, enums.DistributionStatusPartiallyCompleted, final.Status)
	assert.Equal(t, 1, final.SentCount)
	assert.Equal(t, 2, final.FailedCount)
	require.NotNil(t, final.SentAt)

	var logs []models.DeliveryLog
	require.NoError(t, conn.Where("distribution_id = ? AND status = ?", d.ID, enums.DeliveryStatusFailed).Find(&logs).Error)
	require.Len(t, logs, 2)
	for _, l := range logs {
		require.NotNil(t, l.ErrorMessage)
		assert.Equal(t, "interrupted", *l.ErrorMessage)
		assert.Contains(t, []uuid.UUID{b.ID, c.ID}, l.MediaOutletID)
	}

	again, err := repo.FailUnrecorded(ctx, d.ID, "interrupted")
	require.NoError(t, err)
	assert.Equal(t, final.Status, again.Status)
	assert.Equal(t, 2, again.FailedCount)
}
