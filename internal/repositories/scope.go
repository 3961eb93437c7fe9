package repositories

import (
	"strings"

	"gorm.io/gorm"
	"shiftwise/internal/access"
)

// AgencyScope limits a query to the rows an identity may see: everything
// for superusers, its own agency otherwise, nothing without an agency.
func AgencyScope(id access.Identity, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id.Superuser {
			return db
		}
		if id.AgencyID == nil {
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", *id.AgencyID)
	}
}

func Paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
