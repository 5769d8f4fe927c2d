package book

import (
	"time"

	"webservices-backend/internal/resource"
)

// Genres the catalog accepts.
var Genres = []string{
	"Fiction", "Non-Fiction", "Mystery", "Fantasy",
	"Science-Fiction", "Biography", "History", "Romance",
}

func floatPtr(f float64) *float64 { return &f }

// Schema declares the book resource. Writes are protected and created books
// record the acting user as owner.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:       "book",
		Collection: "books",
		Fields: []resource.Field{
			{
				Name:     "title",
				Label:    "Title",
				Type:     resource.String,
				Required: true,
				MaxLen:   200,
			},
			{
				Name:     "author",
				Label:    "Author",
				Type:     resource.String,
				Required: true,
			},
			{
				Name:     "isbn",
				Label:    "ISBN",
				Type:     resource.String,
				Required: true,
				LenIn:    []int{10, 13},
				Unique:   true,
			},
			{
				Name:     "genre",
				Label:    "Genre",
				Type:     resource.Enum,
				Required: true,
				Enum:     Genres,
				EnumNoun: "genre",
			},
			{
				Name:  "publishedYear",
				Label: "Published year",
				Type:  resource.Number,
				Min:   floatPtr(1450),
				Max:   floatPtr(float64(time.Now().Year())),
			},
			{
				Name:  "price",
				Label: "Price",
				Type:  resource.Decimal,
				Min:   floatPtr(0),
			},
		},
		DefaultSort: []resource.SortKey{
			{Field: "createdAt", Desc: true},
		},
		ProtectedWrites: true,
		AttachOwner:     true,
	}
}
