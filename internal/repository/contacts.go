package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/okoval/contacts_api/internal/models"
)

type ContactRepository struct {
	DB *gorm.DB
	// Now overrides the clock for the birthday window; nil means time.Now.
	Now func() time.Time
}

func (r *ContactRepository) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *ContactRepository) List(ctx context.Context, userID uint, name, surname, email string, skip, limit int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("name LIKE ?", "%"+name+"%").
		Where("surname LIKE ?", "%"+surname+"%").
		Where("email LIKE ?", "%"+email+"%").
		Offset(skip).Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}

// GetByID is scoped by owner: a contact belonging to someone else looks
// exactly like a contact that does not exist.
func (r *ContactRepository) GetByID(ctx context.Context, contactID, userID uint) (*models.Contact, error) {
	var contact models.Contact
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.DB.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ContactRepository) Save(ctx context.Context, contact *models.Contact) error {
	if err := r.DB.WithContext(ctx).Save(contact).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, contact *models.Contact) error {
	if err := r.DB.WithContext(ctx).Delete(contact).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Exists reports whether the owner already has a contact with this email or
// phone. It is a best-effort pre-check for a friendly 409; the composite
// unique indexes remain the authority if two inserts race.
func (r *ContactRepository) Exists(ctx context.Context, userID uint, email, phone string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Contact{}).
		Where("user_id = ?", userID).
		Where("email = ? OR phone = ?", email, phone).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return count > 0, nil
}

// UpcomingBirthdays matches on day-of-month only, the month is never
// compared, so a birthday in another month whose day lands inside the
// numeric window is matched too. Kept for compatibility with existing
// clients. The window [today, today+days] may wrap past month end, in
// which case it is the union [start, 31] and [1, end]. Results come back
// in window order, i.e. ascending by distance from today's day.
func (r *ContactRepository) UpcomingBirthdays(ctx context.Context, userID uint, days int) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	today := r.now()
	startDay := today.Day()
	endDay := today.AddDate(0, 0, days).Day()
	wraps := endDay < startDay

	matched := contacts[:0]
	for _, contact := range contacts {
		day := contact.Birthday.Day()
		inRange := day >= startDay && day <= endDay
		if wraps {
			inRange = day >= startDay || day <= endDay
		}
		if inRange {
			matched = append(matched, contact)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return windowOffset(matched[i].Birthday.Day(), startDay) < windowOffset(matched[j].Birthday.Day(), startDay)
	})

	return matched, nil
}

func windowOffset(day, startDay int) int {
	return (day - startDay + 31) % 31
}
