package models

import "time"

// Product represents a product in the store.
//
// Category-conditional attributes are pointers: nil means "not persisted for
// this category". Change Category through SetCategory, then call
// NormalizeAttributes.
type Product struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"nome" firestore:"nome"`
	Description string    `json:"descricao" firestore:"descricao"`
	Price       float64   `json:"preco" firestore:"preco"`
	Quantity    int       `json:"quantidade" firestore:"quantidade"`
	Category    string    `json:"categoria" firestore:"categoria"`
	Image       *string   `json:"imagem" firestore:"imagem"`
	Size        *string   `json:"tamanho,omitempty" firestore:"tamanho,omitempty"`
	Color       *string   `json:"cor,omitempty" firestore:"cor,omitempty"`
	Composition *string   `json:"composicao,omitempty" firestore:"composicao,omitempty"`
	Type        *string   `json:"tipo,omitempty" firestore:"tipo,omitempty"`
	Material    *string   `json:"material,omitempty" firestore:"material,omitempty"`
	AgeRange    *string   `json:"idade,omitempty" firestore:"idade,omitempty"`
	Gender      *string   `json:"genero,omitempty" firestore:"genero,omitempty"`
	CreatedAt   time.Time `json:"criado_em" firestore:"criado_em"`
	UpdatedAt   time.Time `json:"atualizado_em" firestore:"atualizado_em"`
}

// attribute returns the field backing the wire attribute name.
func (p *Product) attribute(name string) **string {
	switch name {
	case AttrSize:
		return &p.Size
	case AttrColor:
		return &p.Color
	case AttrComposition:
		return &p.Composition
	case AttrType:
		return &p.Type
	case AttrMaterial:
		return &p.Material
	case AttrAgeRange:
		return &p.AgeRange
	case AttrGender:
		return &p.Gender
	}
	return nil
}

// Attribute returns the value of a category-conditional attribute and whether
// it is set.
func (p *Product) Attribute(name string) (string, bool) {
	f := p.attribute(name)
	if f == nil || *f == nil {
		return "", false
	}
	return **f, true
}

// SetAttribute stores value under the wire attribute name. Unknown names are
// ignored.
func (p *Product) SetAttribute(name, value string) {
	if f := p.attribute(name); f != nil {
		v := value
		*f = &v
	}
}

// SetCategory changes the category. Moving to another class clears every
// attribute of the previous class, including ones the new class shares.
func (p *Product) SetCategory(category string) {
	if old := ClassOf(p.Category); old != ClassOf(category) {
		for _, name := range old.Attributes() {
			*p.attribute(name) = nil
		}
	}
	p.Category = category
}

// NormalizeAttributes enforces the category invariant: attributes of the
// active class are present (empty string at minimum), every other attribute
// is cleared.
func (p *Product) NormalizeAttributes() {
	class := ClassOf(p.Category)
	for _, name := range AttributeNames {
		f := p.attribute(name)
		if !class.Has(name) {
			*f = nil
			continue
		}
		if *f == nil {
			empty := ""
			*f = &empty
		}
	}
}
