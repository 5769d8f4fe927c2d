package project

import (
	"webservices-backend/internal/resource"
)

// Statuses a project moves through. Free-form in an early revision of the
// model; pinned to an enum here so filters stay meaningful.
var Statuses = []string{"planning", "active", "on-hold", "completed", "cancelled"}

// Schema declares the project resource. All routes are public: no revision
// of the project routes ever carried the auth gate.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:       "project",
		Collection: "projects",
		Fields: []resource.Field{
			{
				Name:     "name",
				Label:    "Project name",
				Type:     resource.String,
				Required: true,
			},
			{
				Name:  "description",
				Label: "Description",
				Type:  resource.String,
			},
			{
				Name:       "status",
				Label:      "Status",
				Type:       resource.Enum,
				Enum:       Statuses,
				EnumNoun:   "status",
				Default:    "planning",
				Filterable: true,
			},
			{
				Name:  "priority",
				Label: "Priority",
				Type:  resource.String,
			},
			{
				Name:  "category",
				Label: "Category",
				Type:  resource.String,
			},
			{
				Name:  "deadline",
				Label: "Deadline",
				Type:  resource.Date,
			},
			{
				Name:  "assignedTo",
				Label: "Assigned to",
				Type:  resource.String,
			},
		},
		DefaultSort: []resource.SortKey{
			{Field: "createdAt", Desc: true},
		},
	}
}
