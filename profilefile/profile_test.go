package profilefile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster-mapper/internal/fixture"
	"caster-mapper/internal/mapping"
	"caster-mapper/mapper"
	"caster-mapper/primitive"
	"caster-mapper/profilefile"
)

const catsYAML = `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    properties: [Name, ID]
    fields:
      - target: Type
        source: Type
        transform: AlwaysBad
      - target: Payload
        source: Payload
        rule: fixture.Payload->fixture.PayloadDto
      - target: Kittens
        source: Kittens
        rule: fixture.Cat->fixture.CatDto
      - target: Toys
        source: Toys
        rule: fixture.Toy->fixture.ToyDto
      - target: NewValue
        default: "true"
  - source: fixture.Payload
    target: fixture.PayloadDto
    fields:
      - target: Value
        source: Value
        transform: Pipe
  - source: fixture.Toy
    target: fixture.ToyDto
    auto: true
transforms:
  - name: AlwaysBad
  - name: Pipe
`

const catsHCL = `
mapping "fixture.Cat" "fixture.CatDto" {
  properties = ["Name", "ID"]

  field "Type" {
    source    = "Type"
    transform = "AlwaysBad"
  }

  field "Payload" {
    source = "Payload"
    rule   = "fixture.Payload->fixture.PayloadDto"
  }

  field "Kittens" {
    source = "Kittens"
    rule   = "fixture.Cat->fixture.CatDto"
  }

  field "Toys" {
    source = "Toys"
    rule   = "fixture.Toy->fixture.ToyDto"
  }

  field "NewValue" {
    default = true
  }
}

mapping "fixture.Payload" "fixture.PayloadDto" {
  field "Value" {
    source    = "Value"
    transform = "Pipe"
  }
}

mapping "fixture.Toy" "fixture.ToyDto" {
  auto = true
}

transform "AlwaysBad" {}
transform "Pipe" {}
`

func alwaysBad(fixture.CatType) fixture.CatType { return fixture.CatTypeBad }

func pipe(v int) string { return strconv.Itoa(v) + "|" }

func newCatalog(t *testing.T) *profilefile.Catalog {
	t.Helper()

	c := profilefile.NewCatalog()
	profilefile.Register[fixture.Cat](c)
	profilefile.Register[fixture.CatDto](c)
	profilefile.Register[fixture.Payload](c)
	profilefile.Register[fixture.PayloadDto](c)
	c.AddTypes(reflect.TypeFor[fixture.Toy](), reflect.TypeFor[*fixture.ToyDto]())

	require.NoError(t, c.AddTransform("AlwaysBad", alwaysBad))
	require.NoError(t, c.AddTransform("Pipe", pipe))

	return c
}

// codeProfile registers by hand the rules catsYAML describes.
func codeProfile(pm *mapper.ProfileMapper) error {
	mapper.AddRule[fixture.Cat, fixture.CatDto](pm).
		Properties("Name", "ID").
		Property("Type", "Type", mapper.Const[fixture.Cat, fixture.CatDto](fixture.CatTypeBad)).
		ByRule("Payload", "Payload", mapper.WithRule[fixture.Payload, fixture.PayloadDto]()).
		ByRule("Kittens", "Kittens", mapper.WithRule[fixture.Cat, fixture.CatDto]()).
		ByRule("Toys", "Toys", mapper.WithRule[fixture.Toy, fixture.ToyDto]()).
		Fill("NewValue", mapper.Value[fixture.Cat](true))

	mapper.AddRule[fixture.Payload, fixture.PayloadDto](pm).
		Property("Value", "Value", mapper.Transform(
			func(_ context.Context, v int, _ *fixture.Payload, _ *fixture.PayloadDto) (string, error) {
				return pipe(v), nil
			}))

	mapper.AddRule[fixture.Toy, fixture.ToyDto](pm).AllProperties()

	return nil
}

func collect(t *testing.T, profiles ...mapper.Profile) *mapper.Mapper {
	t.Helper()

	store := mapper.NewStore()
	require.NoError(t, store.CollectFromProfiles(context.Background(), profiles...))

	return mapper.New(store)
}

func collectErr(profiles ...mapper.Profile) error {
	return mapper.NewStore().CollectFromProfiles(context.Background(), profiles...)
}

func richCat() fixture.Cat {
	cat := fixture.NewCat()
	kitten := fixture.NewCat()
	kitten.ID, kitten.Name, kitten.Payload = 2, "Murka", nil
	kitten.Toys = []fixture.Toy{{Name: "mouse", Price: 1.5}}
	cat.Kittens = []fixture.Cat{kitten}
	cat.Toys = []fixture.Toy{{Name: "ball", Price: 3}}

	return cat
}

func TestLoad_MatchesCodeProfile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{"cats.yaml": catsYAML, "cats.hcl": catsHCL}

	want, err := mapper.MapTo[fixture.Cat, fixture.CatDto](
		context.Background(), collect(t, mapper.ProfileFunc(codeProfile)), richCat())
	require.NoError(t, err)

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			p, err := profilefile.Load(path, newCatalog(t))
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())

			m := collect(t, p)
			assert.Equal(t, 3, m.Store().Len())

			got, err := mapper.MapTo[fixture.Cat, fixture.CatDto](context.Background(), m, richCat())
			require.NoError(t, err)
			assert.Equal(t, want, got)

			assert.Equal(t, fixture.CatTypeBad, got.Type)
			assert.Equal(t, "5|", got.Payload.Value)
			require.Len(t, got.Kittens, 1)
			assert.Nil(t, got.Kittens[0].Payload)
			assert.Equal(t, &fixture.ToyDto{Name: "mouse", Price: 1.5}, got.Kittens[0].Toys[0])
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := profilefile.Load(filepath.Join(t.TempDir(), "none.yaml"), newCatalog(t))
	require.Error(t, err)
}

func parse(t *testing.T, yaml string) *mapping.MappingFile {
	t.Helper()

	mf, err := mapping.Parse([]byte(yaml))
	require.NoError(t, err)

	return mf
}

func TestProfile_InvalidFile(t *testing.T) {
	mf := parse(t, `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    properties: [Nmae]
`)

	_, err := profilefile.Profile("bad", mf, newCatalog(t))
	require.ErrorIs(t, err, profilefile.ErrInvalidFile)
	assert.Contains(t, err.Error(), "invalid_source_path")
}

func TestProfile_Defaults(t *testing.T) {
	mf := parse(t, `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    properties: [Name]
    fields:
      - target: [Coins, ID]
        default: "7"
      - target: Type
        default: good
      - target: Name
        default: Anonymous
`)

	p, err := profilefile.Profile("defaults", mf, newCatalog(t))
	require.NoError(t, err)

	dto, err := mapper.MapTo[fixture.Cat, fixture.CatDto](context.Background(), collect(t, p), fixture.NewCat())
	require.NoError(t, err)

	assert.Equal(t, fixture.CatDto{ID: 7, Coins: 7, Type: fixture.CatTypeGood, Name: "Anonymous"}, dto)
}

func TestProfile_DefineErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		wantMsg string
	}{
		{
			name: "bad enum default",
			yaml: `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Type
        default: ugly
`,
			wantErr: primitive.ErrInvalidEnum,
		},
		{
			name: "bad number default",
			yaml: `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Coins
        default: many
`,
			wantErr: strconv.ErrSyntax,
		},
		{
			name: "unknown transform",
			yaml: `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Name
        source: Name
        transform: Shout
`,
			wantErr: profilefile.ErrUnknownTransform,
		},
		{
			name: "transform input mismatch",
			yaml: `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Name
        source: Name
        transform: Pipe
`,
			wantMsg: "does not accept string",
		},
		{
			name: "transform result mismatch",
			yaml: `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Coins
        source: Age
        transform: Pipe
`,
			wantMsg: "result is not assignable to int",
		},
		{
			name: "unknown rule type",
			yaml: `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Payload
        source: Payload
        rule: fixture.Payload->fixture.Missing
`,
			wantErr: profilefile.ErrUnknownType,
		},
		{
			name: "incompatible copy",
			yaml: `
mappings:
  - source: fixture.Payload
    target: fixture.PayloadDto
    properties: [Value]
`,
			wantErr: mapper.ErrInvalidDirective,
		},
		{
			name: "unknown constructor",
			yaml: `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    construct: constructor
    constructor: NewCatDto
`,
			wantErr: profilefile.ErrUnknownConstructor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := profilefile.Profile(tt.name, parse(t, tt.yaml), newCatalog(t))
			require.NoError(t, err)

			err = collectErr(p)
			require.Error(t, err)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}

			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestProfile_Supply(t *testing.T) {
	c := newCatalog(t)
	require.NoError(t, c.AddTransform("CountKittens", func(cat *fixture.Cat) int { return len(cat.Kittens) }))

	mf := parse(t, `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Coins
        transform: CountKittens
`)

	p, err := profilefile.Profile("supply", mf, c)
	require.NoError(t, err)

	dto, err := mapper.MapTo[fixture.Cat, fixture.CatDto](context.Background(), collect(t, p), richCat())
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Coins)
}

func TestProfile_TransformDeclines(t *testing.T) {
	c := newCatalog(t)
	require.NoError(t, c.AddTransform("NonEmpty", func(s string) (string, bool) { return s, s != "" }))

	mf := parse(t, `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Name
        default: Unnamed
      - target: Name
        source: Name
        transform: NonEmpty
`)

	p, err := profilefile.Profile("declines", mf, c)
	require.NoError(t, err)

	m := collect(t, p)

	named, err := mapper.MapTo[fixture.Cat, fixture.CatDto](context.Background(), m, fixture.NewCat())
	require.NoError(t, err)
	assert.Equal(t, "Barsik", named.Name)

	unnamed, err := mapper.MapTo[fixture.Cat, fixture.CatDto](context.Background(), m, fixture.Cat{})
	require.NoError(t, err)
	assert.Equal(t, "Unnamed", unnamed.Name)
}

func TestProfile_TransformError(t *testing.T) {
	errNegative := errors.New("negative")

	c := newCatalog(t)
	require.NoError(t, c.AddTransform("Positive", func(_ context.Context, v int) (int, error) {
		if v < 0 {
			return 0, errNegative
		}

		return v, nil
	}))

	mf := parse(t, `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Coins
        source: Age
        transform: Positive
`)

	p, err := profilefile.Profile("errors", mf, c)
	require.NoError(t, err)

	_, err = mapper.MapTo[fixture.Cat, fixture.CatDto](context.Background(), collect(t, p), fixture.Cat{Age: -1})
	require.ErrorIs(t, err, errNegative)
}

func TestProfile_Constructors(t *testing.T) {
	c := profilefile.NewCatalog()
	profilefile.Register[fixture.Kennel](c)
	profilefile.Register[fixture.Shelter](c)
	profilefile.Register[fixture.Vet](c)

	require.NoError(t, c.AddConstructor("SmallShelter", func() fixture.Shelter {
		return fixture.Shelter{Capacity: 3}
	}))

	mf := parse(t, `
mappings:
  - source: fixture.Kennel
    target: fixture.Shelter
    construct: constructor
    properties: [Name]
  - source: fixture.Vet
    target: fixture.Shelter
    construct: constructor
    constructor: SmallShelter
    properties: [Name]
`)

	p, err := profilefile.Profile("ctors", mf, c)
	require.NoError(t, err)

	m := collect(t, p)
	ctx := context.Background()

	byInit, err := mapper.MapTo[fixture.Kennel, fixture.Shelter](ctx, m, fixture.Kennel{Name: "north"})
	require.NoError(t, err)
	assert.Equal(t, fixture.Shelter{Name: "north", Capacity: fixture.DefaultCapacity, Cats: []fixture.CatDto{}}, byInit)

	byName, err := mapper.MapTo[fixture.Vet, fixture.Shelter](ctx, m, fixture.Vet{Name: "south"})
	require.NoError(t, err)
	assert.Equal(t, fixture.Shelter{Name: "south", Capacity: 3}, byName)
}

func TestProfile_Conversions(t *testing.T) {
	c := profilefile.NewCatalog().WithConversions(primitive.CategoryUnsafeNumber)
	profilefile.Register[fixture.OrderDTO](c)
	profilefile.Register[fixture.Order](c)

	mf := parse(t, `
mappings:
  - source: fixture.OrderDTO
    target: fixture.Order
    121:
      Order_ID: OrderID
      Amount: TotalCents
    properties: [CustomerID, Status]
`)

	p, err := profilefile.Profile("orders", mf, c)
	require.NoError(t, err)

	order, err := mapper.MapTo[fixture.OrderDTO, fixture.Order](context.Background(), collect(t, p), fixture.OrderDTO{
		Order_ID:   "o-9",
		CustomerID: 4,
		Amount:     99.99,
		Status:     "new",
	})
	require.NoError(t, err)
	assert.Equal(t, fixture.Order{OrderID: "o-9", CustomerID: 4, TotalCents: 99, Status: "new"}, order)
}

func TestProfile_Warnings(t *testing.T) {
	mf := parse(t, `
mappings:
  - source: fixture.Cat
    target: fixture.CatDto
    fields:
      - target: Payload
        source: Payload
        rule: fixture.Payload->fixture.PayloadDto
`)

	warnings := profilefile.Warnings(mf, newCatalog(t))
	require.Len(t, warnings, 1)
	assert.Equal(t, "dangling_rule", warnings[0].Code)

	p, err := profilefile.Profile("dangling", mf, newCatalog(t))
	require.NoError(t, err)
	require.NoError(t, collectErr(p), "the referenced rule may come from another profile")
}
