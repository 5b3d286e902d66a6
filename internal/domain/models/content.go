package models

import (
	"time"

	"github.com/google/uuid"
)

// AboutText is the singleton "about" text block.
type AboutText struct {
	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a AboutText) Sanitized() (AboutText, error) {
	trim(&a.Text)
	return a, validateStruct(a)
}

type Partner struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Logo      string    `json:"logo" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Partner) Sanitized() (Partner, error) {
	trim(&p.Name)
	trim(&p.Logo)
	return p, validateStruct(p)
}

type PartnerPatch struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Logo *string `json:"logo,omitempty" validate:"omitempty,min=1"`
}

func (p PartnerPatch) Fields() (map[string]any, error) {
	trim(p.Name)
	trim(p.Logo)

	if err := validateStruct(p); err != nil {
		return nil, err
	}

	fields := make(map[string]any, 2)
	setIfPresent(fields, "name", p.Name)
	setIfPresent(fields, "logo", p.Logo)

	return fields, nil
}

// Piedavajums is a service offering shown on the offerings page.
type Piedavajums struct {
	ID                    uuid.UUID `json:"id"`
	Title                 string    `json:"title" validate:"required"`
	Duration              string    `json:"duration" validate:"required"`
	Description           string    `json:"description" validate:"required"`
	AdditionalTitle       string    `json:"additionalTitle" validate:"required"`
	AdditionalDescription string    `json:"additionalDescription" validate:"required"`
	Image                 string    `json:"image" validate:"required"`
	Order                 int       `json:"order" validate:"min=0"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func (p Piedavajums) Sanitized() (Piedavajums, error) {
	trim(&p.Title)
	trim(&p.Duration)
	trim(&p.Description)
	trim(&p.AdditionalTitle)
	trim(&p.AdditionalDescription)
	trim(&p.Image)
	return p, validateStruct(p)
}

type PiedavajumsPatch struct {
	Title                 *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Duration              *string `json:"duration,omitempty" validate:"omitempty,min=1"`
	Description           *string `json:"description,omitempty" validate:"omitempty,min=1"`
	AdditionalTitle       *string `json:"additionalTitle,omitempty" validate:"omitempty,min=1"`
	AdditionalDescription *string `json:"additionalDescription,omitempty" validate:"omitempty,min=1"`
	Image                 *string `json:"image,omitempty" validate:"omitempty,min=1"`
	Order                 *int    `json:"order,omitempty" validate:"omitempty,min=0"`
}

func (p PiedavajumsPatch) Fields() (map[string]any, error) {
	trim(p.Title)
	trim(p.Duration)
	trim(p.Description)
	trim(p.AdditionalTitle)
	trim(p.AdditionalDescription)
	trim(p.Image)

	if err := validateStruct(p); err != nil {
		return nil, err
	}

	fields := make(map[string]any, 7)
	setIfPresent(fields, "title", p.Title)
	setIfPresent(fields, "duration", p.Duration)
	setIfPresent(fields, "description", p.Description)
	setIfPresent(fields, "additional_title", p.AdditionalTitle)
	setIfPresent(fields, "additional_description", p.AdditionalDescription)
	setIfPresent(fields, "image", p.Image)
	setIfPresent(fields, "sort_order", p.Order)

	return fields, nil
}

// PiedavajumsHeader is the singleton header of the offerings page.
type PiedavajumsHeader struct {
	Header          string    `json:"header" validate:"required"`
	IntroParagraph1 string    `json:"introParagraph1" validate:"required"`
	IntroParagraph2 string    `json:"introParagraph2" validate:"required"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (h PiedavajumsHeader) Sanitized() (PiedavajumsHeader, error) {
	trim(&h.Header)
	trim(&h.IntroParagraph1)
	trim(&h.IntroParagraph2)
	return h, validateStruct(h)
}

type TeamMember struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description" validate:"required"`
	SmallImage  string    `json:"smallImage" validate:"required"`
	FullImage   string    `json:"fullImage" validate:"required"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (m TeamMember) Sanitized() (TeamMember, error) {
	trim(&m.Name)
	trim(&m.Description)
	trim(&m.SmallImage)
	trim(&m.FullImage)
	return m, validateStruct(m)
}

type TeamMemberPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1"`
	SmallImage  *string `json:"smallImage,omitempty" validate:"omitempty,min=1"`
	FullImage   *string `json:"fullImage,omitempty" validate:"omitempty,min=1"`
}

func (p TeamMemberPatch) Fields() (map[string]any, error) {
	trim(p.Name)
	trim(p.Description)
	trim(p.SmallImage)
	trim(p.FullImage)

	if err := validateStruct(p); err != nil {
		return nil, err
	}

	fields := make(map[string]any, 4)
	setIfPresent(fields, "name", p.Name)
	setIfPresent(fields, "description", p.Description)
	setIfPresent(fields, "small_image", p.SmallImage)
	setIfPresent(fields, "full_image", p.FullImage)

	return fields, nil
}

type Testimonial struct {
	ID          uuid.UUID `json:"id"`
	Company     string    `json:"company" validate:"required"`
	Testimonial string    `json:"testimonial" validate:"required"`
	Signature   string    `json:"signature" validate:"required"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t Testimonial) Sanitized() (Testimonial, error) {
	trim(&t.Company)
	trim(&t.Testimonial)
	trim(&t.Signature)
	return t, validateStruct(t)
}

type TestimonialPatch struct {
	Company     *string `json:"company,omitempty" validate:"omitempty,min=1"`
	Testimonial *string `json:"testimonial,omitempty" validate:"omitempty,min=1"`
	Signature   *string `json:"signature,omitempty" validate:"omitempty,min=1"`
}

func (p TestimonialPatch) Fields() (map[string]any, error) {
	trim(p.Company)
	trim(p.Testimonial)
	trim(p.Signature)

	if err := validateStruct(p); err != nil {
		return nil, err
	}

	fields := make(map[string]any, 3)
	setIfPresent(fields, "company", p.Company)
	setIfPresent(fields, "testimonial", p.Testimonial)
	setIfPresent(fields, "signature", p.Signature)

	return fields, nil
}
