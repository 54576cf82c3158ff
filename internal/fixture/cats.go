package fixture

import "errors"

// CatType classifies a cat.
type CatType string

const (
	CatTypeGood CatType = "good"
	CatTypeBad  CatType = "bad"
)

// IsValid reports whether t is a declared cat type.
func (t CatType) IsValid() bool {
	return t == CatTypeGood || t == CatTypeBad
}

// Payload is a cat's attached data.
type Payload struct {
	Value int
}

// Cat is the domain model.
type Cat struct {
	ID      int
	Name    string
	Age     int
	Type    CatType
	Payload *Payload
	Kittens []Cat
	Toys    []Toy
}

// Toy is owned by a cat.
type Toy struct {
	Name  string
	Price float64
}

// PayloadDto is the transport form of Payload.
type PayloadDto struct {
	Value string
}

// CatDto is the transport form of Cat.
type CatDto struct {
	ID       int
	Name     string
	Type     CatType
	Payload  *PayloadDto
	Kittens  []CatDto
	Toys     []*ToyDto
	Coins    int
	NewValue bool
}

// ToyDto is the transport form of Toy.
type ToyDto struct {
	Name  string
	Price float64
}

// NewCat returns the reference cat.
func NewCat() Cat {
	return Cat{
		ID:      1,
		Name:    "Barsik",
		Age:     10,
		Type:    CatTypeGood,
		Payload: &Payload{Value: 5},
	}
}

// Shelter is built through its Init method.
type Shelter struct {
	Name     string
	Capacity int
	Cats     []CatDto
}

// DefaultCapacity is the capacity Init assigns.
const DefaultCapacity = 12

// Init prepares an empty shelter.
func (s *Shelter) Init() error {
	s.Capacity = DefaultCapacity
	s.Cats = []CatDto{}

	return nil
}

// Kennel has no way to be constructed without arguments.
type Kennel struct {
	Name string
}

// ErrClosed is returned by Vet.Init.
var ErrClosed = errors.New("vet is closed")

// Vet fails its own initialization.
type Vet struct {
	Name string
}

// Init always fails.
func (v *Vet) Init() error {
	return ErrClosed
}
