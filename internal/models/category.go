package models

import "strings"

// DefaultCategory is stored when a product is submitted without a category.
const DefaultCategory = "Outros"

// CategoryClass groups category tags that share the same attribute set.
type CategoryClass int

const (
	ClassOther CategoryClass = iota
	ClassClothing
	ClassAccessories
	ClassKids
)

// Attribute names as they appear on the wire.
const (
	AttrSize        = "tamanho"
	AttrColor       = "cor"
	AttrComposition = "composicao"
	AttrType        = "tipo"
	AttrMaterial    = "material"
	AttrAgeRange    = "idade"
	AttrGender      = "genero"
)

// AttributeNames lists every category-conditional attribute.
var AttributeNames = []string{
	AttrSize, AttrColor, AttrComposition,
	AttrType, AttrMaterial,
	AttrAgeRange, AttrGender,
}

var classAttributes = map[CategoryClass][]string{
	ClassClothing:    {AttrSize, AttrColor, AttrComposition},
	ClassAccessories: {AttrType, AttrMaterial, AttrColor},
	ClassKids:        {AttrAgeRange, AttrGender},
}

// ClassOf maps a category tag to its class. Matching is case-insensitive and
// unknown tags fall into ClassOther.
func ClassOf(category string) CategoryClass {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "masculino", "feminino":
		return ClassClothing
	case "acessorios":
		return ClassAccessories
	case "infantil":
		return ClassKids
	default:
		return ClassOther
	}
}

// Attributes returns the attribute names owned by the class.
func (c CategoryClass) Attributes() []string {
	return classAttributes[c]
}

// Has reports whether name belongs to the class's attribute set.
func (c CategoryClass) Has(name string) bool {
	for _, a := range classAttributes[c] {
		if a == name {
			return true
		}
	}
	return false
}

func (c CategoryClass) String() string {
	switch c {
	case ClassClothing:
		return "clothing"
	case ClassAccessories:
		return "accessories"
	case ClassKids:
		return "kids"
	default:
		return "other"
	}
}
