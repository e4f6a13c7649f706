package repository

import (
	"errors"

	"gorm.io/gorm"

	"newsnotes/cmd/internal/domain/entity"
)

type DefaultNoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *DefaultNoteRepository {
	return &DefaultNoteRepository{db: db}
}

// FindByAuthorID returns the notes of one author in insertion order.
func (d *DefaultNoteRepository) FindByAuthorID(authorID int64) ([]*entity.Note, error) {
	var notes []*entity.Note
	err := d.db.
		Where("author_id = ?", authorID).
		Order("id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (d *DefaultNoteRepository) FindBySlug(slug string) (*entity.Note, error) {
	var note entity.Note
	err := d.db.Where("slug = ?", slug).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ExistsBySlug reports whether any note other than 'excludeID' uses the slug.
// Pass 0 to check against every note.
func (d *DefaultNoteRepository) ExistsBySlug(slug string, excludeID int64) (bool, error) {
	return existsBySlug(d.db, slug, excludeID)
}

// CreateIfSlugFree inserts the note unless its slug is taken, in which case
// it returns false and writes nothing.
func (d *DefaultNoteRepository) CreateIfSlugFree(note *entity.Note) (bool, error) {
	return d.saveIfSlugFree(note, 0, func(tx *gorm.DB) error {
		return tx.Create(note).Error
	})
}

// UpdateIfSlugFree saves the note unless another note already uses its slug.
func (d *DefaultNoteRepository) UpdateIfSlugFree(note *entity.Note) (bool, error) {
	return d.saveIfSlugFree(note, note.ID, func(tx *gorm.DB) error {
		return tx.Save(note).Error
	})
}

func (d *DefaultNoteRepository) Delete(note *entity.Note) error {
	return d.db.Delete(&entity.Note{}, note.ID).Error
}

func (d *DefaultNoteRepository) saveIfSlugFree(note *entity.Note, excludeID int64, write func(tx *gorm.DB) error) (bool, error) {
	saved := false
	err := d.db.Transaction(func(tx *gorm.DB) error {
		taken, err := existsBySlug(tx, note.Slug, excludeID)
		if err != nil {
			return err
		}

		if taken {
			return nil
		}

		if err = write(tx); err != nil {
			return err
		}
		saved = true
		return nil
	})

	// Lost the race against a concurrent writer of the same slug
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}

	if err != nil {
		return false, err
	}
	return saved, nil
}

func existsBySlug(db *gorm.DB, slug string, excludeID int64) (bool, error) {
	var count int64
	err := db.Model(&entity.Note{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
