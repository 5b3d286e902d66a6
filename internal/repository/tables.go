package repository

import "site_cms/internal/domain/models"

var AboutTextsTable = Table[models.AboutText]{
	Name:    "about_texts",
	Columns: []string{"text"},
	Values: func(a models.AboutText) []any {
		return []any{a.Text}
	},
	Dest: func(a *models.AboutText) []any {
		return []any{&a.Text, &a.CreatedAt, &a.UpdatedAt}
	},
}

var PiedavajumiHeadersTable = Table[models.PiedavajumsHeader]{
	Name:    "piedavajumi_headers",
	Columns: []string{"header", "intro_paragraph1", "intro_paragraph2"},
	Values: func(h models.PiedavajumsHeader) []any {
		return []any{h.Header, h.IntroParagraph1, h.IntroParagraph2}
	},
	Dest: func(h *models.PiedavajumsHeader) []any {
		return []any{&h.Header, &h.IntroParagraph1, &h.IntroParagraph2, &h.CreatedAt, &h.UpdatedAt}
	},
}

var PartnersTable = Table[models.Partner]{
	Name:    "partners",
	Columns: []string{"name", "logo"},
	Values: func(p models.Partner) []any {
		return []any{p.Name, p.Logo}
	},
	Dest: func(p *models.Partner) []any {
		return []any{&p.ID, &p.Name, &p.Logo, &p.CreatedAt, &p.UpdatedAt}
	},
}

var PiedavajumiTable = Table[models.Piedavajums]{
	Name: "piedavajumi",
	Columns: []string{
		"title",
		"duration",
		"description",
		"additional_title",
		"additional_description",
		"image",
		"sort_order",
	},
	Values: func(p models.Piedavajums) []any {
		return []any{
			p.Title,
			p.Duration,
			p.Description,
			p.AdditionalTitle,
			p.AdditionalDescription,
			p.Image,
			p.Order,
		}
	},
	Dest: func(p *models.Piedavajums) []any {
		return []any{
			&p.ID,
			&p.Title,
			&p.Duration,
			&p.Description,
			&p.AdditionalTitle,
			&p.AdditionalDescription,
			&p.Image,
			&p.Order,
			&p.CreatedAt,
			&p.UpdatedAt,
		}
	},
}

var TeamMembersTable = Table[models.TeamMember]{
	Name:    "team_members",
	Columns: []string{"name", "description", "small_image", "full_image"},
	Values: func(m models.TeamMember) []any {
		return []any{m.Name, m.Description, m.SmallImage, m.FullImage}
	},
	Dest: func(m *models.TeamMember) []any {
		return []any{&m.ID, &m.Name, &m.Description, &m.SmallImage, &m.FullImage, &m.CreatedAt, &m.UpdatedAt}
	},
}

var TestimonialsTable = Table[models.Testimonial]{
	Name:    "testimonials",
	Columns: []string{"company", "testimonial", "signature"},
	Values: func(t models.Testimonial) []any {
		return []any{t.Company, t.Testimonial, t.Signature}
	},
	Dest: func(t *models.Testimonial) []any {
		return []any{&t.ID, &t.Company, &t.Testimonial, &t.Signature, &t.CreatedAt, &t.UpdatedAt}
	},
}
