package enums

import "fmt"

// ContactType is the channel a delivery log was attempted on.
type ContactType string

const (
	ContactTypeEmail    ContactType = "email"
	ContactTypeTelegram ContactType = "telegram"
	ContactTypePhone    ContactType = "phone"
	ContactTypeWhatsApp ContactType = "whatsapp"
)

var validContactTypes = []ContactType{
	ContactTypeEmail,
	ContactTypeTelegram,
	ContactTypePhone,
	ContactTypeWhatsApp,
}

func (c ContactType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c ContactType) IsValid() bool {
	for _, candidate := range validContactTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContactType converts raw input into a ContactType.
func ParseContactType(value string) (ContactType, error) {
	for _, candidate := range validContactTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contact type %q", value)
}
