package examiner

import (
	"time"
)

type (
	Examiner struct {
		ID              string    `json:"id"`
		Name            string    `json:"name"`
		ExaminerID      string    `json:"examiner_id"` // human code, unique
		Department      string    `json:"department"`
		Position        string    `json:"position"`
		Email           string    `json:"email"`
		Phone           string    `json:"phone"`
		ProfileImageURL string    `json:"profile_image_url"`
		CreatedAt       time.Time `json:"created_at"`
		UpdatedAt       time.Time `json:"updated_at"`
	}

	NewExaminer struct {
		Name       string `json:"name" validate:"required,notblank,max=100"`
		ExaminerID string `json:"examiner_id" validate:"required,examiner_code"`
		Department string `json:"department" validate:"max=100"`
		Position   string `json:"position" validate:"max=100"`
		Email      string `json:"email" validate:"omitempty,email"`
		Phone      string `json:"phone" validate:"phone"`
	}

	// UpdateExaminer only changes the fields that are set.
	UpdateExaminer struct {
		Name       *string `json:"name" validate:"omitempty,notblank,max=100"`
		ExaminerID *string `json:"examiner_id" validate:"omitempty,examiner_code"`
		Department *string `json:"department" validate:"omitempty,max=100"`
		Position   *string `json:"position" validate:"omitempty,max=100"`
		Email      *string `json:"email" validate:"omitempty,email"`
		Phone      *string `json:"phone" validate:"omitempty,phone"`
	}

	// QueryFilter is ANDed; Search does a case-insensitive match on name, examiner ID or email.
	QueryFilter struct {
		Search     string
		Department string
	}

	Photo struct {
		ExaminerID  string
		Content     []byte
		ContentType string
		UpdatedAt   time.Time
	}
)

// OrderingFields are the fields examiners can be sorted by.
var OrderingFields = []string{"name", "examiner_id", "department", "created_at", "updated_at"}

func (ue UpdateExaminer) apply(ex *Examiner) {
	if ue.Name != nil {
		ex.Name = *ue.Name
	}
	if ue.ExaminerID != nil {
		ex.ExaminerID = *ue.ExaminerID
	}
	if ue.Department != nil {
		ex.Department = *ue.Department
	}
	if ue.Position != nil {
		ex.Position = *ue.Position
	}
	if ue.Email != nil {
		ex.Email = *ue.Email
	}
	if ue.Phone != nil {
		ex.Phone = *ue.Phone
	}
}
