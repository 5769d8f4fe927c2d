package contact

import (
	"time"

	"webservices-backend/internal/resource"
)

// Colors a contact may declare as favorite.
var Colors = []string{
	"Red", "Blue", "Green", "Yellow", "Purple",
	"Orange", "Black", "White", "Pink", "Brown",
}

// Schema declares the contact resource. Writes are protected: the later
// route revisions put create/update/delete behind the auth gate, and that
// policy wins over the early all-public one.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:       "contact",
		Collection: "contacts",
		Fields: []resource.Field{
			{
				Name:     "firstName",
				Label:    "First name",
				Type:     resource.String,
				Required: true,
				MinLen:   2,
				MaxLen:   50,
			},
			{
				Name:     "lastName",
				Label:    "Last name",
				Type:     resource.String,
				Required: true,
				MinLen:   2,
				MaxLen:   50,
			},
			{
				Name:      "email",
				Label:     "Email",
				Type:      resource.String,
				Required:  true,
				Email:     true,
				Lowercase: true,
				Unique:    true,
			},
			{
				Name:     "favoriteColor",
				Label:    "Favorite color",
				Type:     resource.Enum,
				Required: true,
				Enum:     Colors,
				EnumNoun: "color",
			},
			{
				Name:      "birthday",
				Label:     "Birthday",
				Type:      resource.Date,
				Required:  true,
				DateBound: resource.DateNotFuture,
			},
		},
		DefaultSort: []resource.SortKey{
			{Field: "lastName"},
			{Field: "firstName"},
		},
		ProtectedWrites: true,
		Present:         present,
	}
}

// present shapes a contact for responses, adding the derived fullName and
// age and formatting the birthday as YYYY-MM-DD.
func present(rec *resource.Record) map[string]interface{} {
	out := resource.DefaultPresent(rec)

	firstName, _ := rec.Fields["firstName"].(string)
	lastName, _ := rec.Fields["lastName"].(string)
	out["fullName"] = firstName + " " + lastName

	if birthday, ok := rec.Fields["birthday"].(time.Time); ok {
		out["birthday"] = birthday.Format("2006-01-02")
		out["age"] = age(birthday, time.Now())
	}

	return out
}

// age counts whole years between birthday and now, stepping back one when
// this year's birthday has not happened yet.
func age(birthday, now time.Time) int {
	years := now.Year() - birthday.Year()

	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		years--
	}

	return years
}
