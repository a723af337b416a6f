package model

// Doctor is an assignment target on the schedule board. The profile fields
// are display-only and never inspected by the scheduling logic.
type Doctor struct {
	Base
	Name           string  `db:"name" json:"name"`
	Specialty      string  `db:"specialty" json:"specialty"`
	IsAvailable    bool    `db:"is_available" json:"is_available"`
	Avatar         *string `db:"avatar" json:"avatar,omitempty"`
	Bio            *string `db:"bio" json:"bio,omitempty"`
	Education      *string `db:"education" json:"education,omitempty"`
	Experience     *string `db:"experience" json:"experience,omitempty"`
	Certifications *string `db:"certifications" json:"certifications,omitempty"`
}

func (d *Doctor) Clone() *Doctor {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Avatar = clonePtr(d.Avatar)
	cp.Bio = clonePtr(d.Bio)
	cp.Education = clonePtr(d.Education)
	cp.Experience = clonePtr(d.Experience)
	cp.Certifications = clonePtr(d.Certifications)
	return &cp
}

type CreateDoctorRequest struct {
	Name           string  `json:"name" binding:"required"`
	Specialty      string  `json:"specialty" binding:"required"`
	IsAvailable    *bool   `json:"is_available"`
	Avatar         *string `json:"avatar"`
	Bio            *string `json:"bio"`
	Education      *string `json:"education"`
	Experience     *string `json:"experience"`
	Certifications *string `json:"certifications"`
}

type UpdateDoctorRequest struct {
	Name           *string `json:"name"`
	Specialty      *string `json:"specialty"`
	IsAvailable    *bool   `json:"is_available"`
	Avatar         *string `json:"avatar"`
	Bio            *string `json:"bio"`
	Education      *string `json:"education"`
	Experience     *string `json:"experience"`
	Certifications *string `json:"certifications"`
}
