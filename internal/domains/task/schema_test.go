package task

import (
	"context"
	"testing"
	"time"

	"webservices-backend/internal/domains/project"
	"webservices-backend/internal/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTaskFixtures wires task and project services over one registry so
// the project reference resolves, and returns a project to hang tasks on.
func newTaskFixtures(t *testing.T) (*resource.Service, string) {
	t.Helper()

	registry := resource.NewMemoryRegistry()
	projectSchema := project.Schema()
	projects := resource.NewService(projectSchema, registry.Store(projectSchema), registry)
	taskSchema := Schema()
	tasks := resource.NewService(taskSchema, registry.Store(taskSchema), registry)

	proj, err := projects.Create(context.Background(), map[string]interface{}{
		"name": "Test Project",
	}, nil)
	require.NoError(t, err)

	return tasks, proj.ID
}

func TestTaskDefaults(t *testing.T) {
	tasks, projectID := newTaskFixtures(t)

	created, err := tasks.Create(context.Background(), map[string]interface{}{
		"title":     "Write tests",
		"projectId": projectID,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "medium", created.Fields["priority"])
	assert.Equal(t, "todo", created.Fields["status"])
	assert.Equal(t, float64(0), created.Fields["actualHours"])
}

func TestTaskEmptyStatusOnUpdateKeepsValue(t *testing.T) {
	tasks, projectID := newTaskFixtures(t)
	ctx := context.Background()

	created, err := tasks.Create(ctx, map[string]interface{}{
		"title":     "Keep status",
		"projectId": projectID,
		"status":    "in-progress",
	}, nil)
	require.NoError(t, err)

	// An empty status is not a member of the enum; the update must leave
	// the stored value alone instead of persisting "".
	updated, err := tasks.Update(ctx, created.ID, map[string]interface{}{
		"status": "",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "in-progress", updated.Fields["status"])
}

func TestTaskRequiresExistingProject(t *testing.T) {
	tasks, _ := newTaskFixtures(t)

	_, err := tasks.Create(context.Background(), map[string]interface{}{
		"title":     "Orphan task",
		"projectId": "64a0000000000000000000ff",
	}, nil)

	var refErr *resource.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "Project not found with ID: 64a0000000000000000000ff", refErr.Error())
}

func TestTaskDueDateMustBeFuture(t *testing.T) {
	tasks, projectID := newTaskFixtures(t)

	_, err := tasks.Create(context.Background(), map[string]interface{}{
		"title":     "Late task",
		"projectId": projectID,
		"dueDate":   "2020-01-01",
	}, nil)

	var validationErr *resource.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Due date must be in the future"}, validationErr.Violations)
}

func TestTaskDefaultSortDueDateThenPriority(t *testing.T) {
	tasks, projectID := newTaskFixtures(t)
	ctx := context.Background()

	soon := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	later := time.Now().AddDate(0, 1, 0).Format("2006-01-02")

	seed := []map[string]interface{}{
		{"title": "Later low", "projectId": projectID, "priority": "low", "dueDate": later},
		{"title": "Soon low", "projectId": projectID, "priority": "low", "dueDate": soon},
		{"title": "Soon critical", "projectId": projectID, "priority": "critical", "dueDate": soon},
		{"title": "Soon high", "projectId": projectID, "priority": "high", "dueDate": soon},
	}
	for _, fields := range seed {
		_, err := tasks.Create(ctx, fields, nil)
		require.NoError(t, err)
	}

	records, err := tasks.List(ctx, resource.Query{})
	require.NoError(t, err)
	require.Len(t, records, 4)

	var titles []string
	for _, rec := range records {
		titles = append(titles, rec.Fields["title"].(string))
	}

	// Soonest due first; within the same day, most urgent priority first.
	assert.Equal(t, []string{"Soon critical", "Soon high", "Soon low", "Later low"}, titles)
}

func TestTaskStatusFilter(t *testing.T) {
	tasks, projectID := newTaskFixtures(t)
	ctx := context.Background()

	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	seed := []map[string]interface{}{
		{"title": "Done one", "projectId": projectID, "status": "completed", "dueDate": due},
		{"title": "Open one", "projectId": projectID, "status": "todo", "dueDate": due},
		{"title": "Done two", "projectId": projectID, "status": "completed", "dueDate": due},
	}
	for _, fields := range seed {
		_, err := tasks.Create(ctx, fields, nil)
		require.NoError(t, err)
	}

	records, err := tasks.List(ctx, resource.Query{
		Filter: map[string]interface{}{"status": "completed"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "completed", rec.Fields["status"])
	}
}
