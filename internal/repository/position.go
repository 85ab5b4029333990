package repository

import (
	"gorm.io/gorm"
)

// insertAt returns ids with id placed at index. The index is clamped to the
// valid range so callers can pass "end" as any large number.
func insertAt(ids []uint, id uint, index int) []uint {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]uint, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}

// indexOf returns the position of id in ids, or -1.
func indexOf(ids []uint, id uint) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// renumber rewrites the position column so ids are ordered 0..n-1.
// UpdateColumn leaves updated_at alone; only the moved row counts as edited.
func renumber(tx *gorm.DB, model interface{}, ids []uint) error {
	for i, id := range ids {
		if err := tx.Model(model).Where("id = ?", id).UpdateColumn("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// siblingIDs lists the ids in scope ordered by position, excluding skip.
func siblingIDs(tx *gorm.DB, model interface{}, scope string, scopeID uint, skip uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(model).
		Where(scope+" = ? AND id <> ?", scopeID, skip).
		Order("position ASC, id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// nextPosition returns the position that appends a row to scope.
func nextPosition(tx *gorm.DB, model interface{}, scope string, scopeID uint) (int, error) {
	var count int64
	if err := tx.Model(model).Where(scope+" = ?", scopeID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
