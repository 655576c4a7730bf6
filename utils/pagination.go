package utils

import "gorm.io/gorm"

// Pagination describes one page of a list response.
type Pagination struct {
	Current int   `json:"current"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// Paginate runs the prepared query with skip/limit and fills dest, returning
// page metadata. page and limit are normalized to sane defaults.
func Paginate(query *gorm.DB, page, limit int, dest interface{}) (*Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if err := query.Offset(offset).Limit(limit).Find(dest).Error; err != nil {
		return nil, err
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return &Pagination{
		Current: page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: int64(offset+limit) < total,
		HasPrev: page > 1,
	}, nil
}
