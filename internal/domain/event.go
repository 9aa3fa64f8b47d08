package domain

import (
	"context"
	"time"
)

// Event is one occasion (e.g. a wedding) that owns a shared media album.
// swagger:model Event
type Event struct {
	ID                 string    `json:"id"`
	Slug               string    `json:"slug"`
	PartnerOneName     string    `json:"partner_one_name"`
	PartnerTwoName     string    `json:"partner_two_name"`
	EventDate          time.Time `json:"event_date"`
	IsActive           bool      `json:"is_active"`
	OwnerID            string    `json:"owner_id,omitempty"`
	CoverImageURL      *string   `json:"cover_image_url"`
	ProfileImageURL    *string   `json:"profile_image_url"`
	BackgroundImageURL *string   `json:"background_image_url"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewEvent returns a new active Event. ID is set by the repository on create.
func NewEvent(slug, partnerOne, partnerTwo string, eventDate time.Time, ownerID string, createdAt time.Time) *Event {
	return &Event{
		Slug:           slug,
		PartnerOneName: partnerOne,
		PartnerTwoName: partnerTwo,
		EventDate:      eventDate,
		IsActive:       true,
		OwnerID:        ownerID,
		CreatedAt:      createdAt,
	}
}

// EventUpdate carries the mutable fields of an Event. Nil fields are left unchanged.
type EventUpdate struct {
	IsActive           *bool
	CoverImageURL      *string
	ProfileImageURL    *string
	BackgroundImageURL *string
}

// Empty reports whether the update changes nothing.
func (u EventUpdate) Empty() bool {
	return u.IsActive == nil && u.CoverImageURL == nil && u.ProfileImageURL == nil && u.BackgroundImageURL == nil
}

// EventRepository defines the interface for event storage.
// Create must return ErrConflict when the slug is already taken.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string, activeOnly bool) (*Event, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, ownerID string, params PaginationParams) ([]*Event, int, error)
	ListIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, update EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, organizerEmail string) error
	SlugAvailable(ctx context.Context, candidate string) (slug string, available bool, err error)
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	GetActiveEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context, ownerID string, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, update EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
	ShareURL(event *Event) string
}
