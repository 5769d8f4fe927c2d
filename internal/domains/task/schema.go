package task

import (
	"webservices-backend/internal/resource"
)

// Priorities in ascending urgency; declaration order is the sort rank.
var Priorities = []string{"low", "medium", "high", "critical"}

// Statuses a task moves through.
var Statuses = []string{"todo", "in-progress", "review", "completed", "blocked"}

func floatPtr(f float64) *float64 { return &f }

// Schema declares the task resource. Public like projects; the task routes
// never carried the auth gate. Tasks reference their project, and the
// reference must resolve at create time and again whenever it changes.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:       "task",
		Collection: "tasks",
		Fields: []resource.Field{
			{
				Name:     "title",
				Label:    "Task title",
				Type:     resource.String,
				Required: true,
				MinLen:   3,
				MaxLen:   200,
			},
			{
				Name:   "description",
				Label:  "Description",
				Type:   resource.String,
				MaxLen: 1000,
			},
			{
				Name:          "projectId",
				Label:         "Project ID",
				Type:          resource.Reference,
				Required:      true,
				Ref:           "Project",
				RefCollection: "projects",
				Filterable:    true,
			},
			{
				Name:       "priority",
				Label:      "Priority",
				Type:       resource.Enum,
				Enum:       Priorities,
				EnumNoun:   "priority",
				Default:    "medium",
				Filterable: true,
			},
			{
				Name:       "status",
				Label:      "Status",
				Type:       resource.Enum,
				Enum:       Statuses,
				EnumNoun:   "status",
				Default:    "todo",
				Filterable: true,
			},
			{
				Name:  "assignedTo",
				Label: "Assigned to",
				Type:  resource.String,
			},
			{
				Name:  "estimatedHours",
				Label: "Estimated hours",
				Type:  resource.Number,
				Min:   floatPtr(0),
				Max:   floatPtr(1000),
			},
			{
				Name:    "actualHours",
				Label:   "Actual hours",
				Type:    resource.Number,
				Min:     floatPtr(0),
				Default: float64(0),
			},
			{
				Name:      "dueDate",
				Label:     "Due date",
				Type:      resource.Date,
				DateBound: resource.DateFuture,
			},
			{
				Name:  "tags",
				Label: "Tags",
				Type:  resource.List,
			},
		},
		// Soonest due first; equally due tasks surface the most urgent.
		DefaultSort: []resource.SortKey{
			{Field: "dueDate"},
			{Field: "priority", Desc: true, Ranked: true},
		},
	}
}
