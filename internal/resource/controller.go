package resource

import (
	"net/http"
	"strings"

	"webservices-backend/internal/auth"
	"webservices-backend/internal/shared/response"
	"webservices-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Controller exposes the uniform CRUD surface for one resource. It is the
// same code for all four resources; the schema decides collection, auth
// policy, validation and response shape.
type Controller struct {
	svc    *Service
	schema *Schema
}

func NewController(svc *Service) *Controller {
	return &Controller{
		svc:    svc,
		schema: svc.Schema(),
	}
}

// RegisterRoutes mounts the five CRUD routes on the group. Reads are always
// public; writes go through requireAuth when the schema protects them.
func (ct *Controller) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("", ct.List)
	rg.GET("/:id", ct.GetByID)

	if ct.schema.ProtectedWrites {
		rg.POST("", requireAuth, ct.Create)
		rg.PUT("/:id", requireAuth, ct.Update)
		rg.DELETE("/:id", requireAuth, ct.Delete)
		return
	}

	rg.POST("", ct.Create)
	rg.PUT("/:id", ct.Update)
	rg.DELETE("/:id", ct.Delete)
}

// ========== CREATE: POST /{resource} ==========
func (ct *Controller) Create(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Request body must be a JSON object")
		return
	}

	actor, _ := auth.FromContext(c)

	rec, err := ct.svc.Create(c.Request.Context(), input, actor)
	if err != nil {
		ct.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated,
		capitalize(ct.schema.Name)+" created successfully", ct.present(rec))
}

// ========== READ ONE: GET /{resource}/:id ==========
func (ct *Controller) GetByID(c *gin.Context) {
	rec, err := ct.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ct.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", ct.present(rec))
}

// ========== READ MANY: GET /{resource} ==========
func (ct *Controller) List(c *gin.Context) {
	q := Query{Filter: map[string]interface{}{}}

	// Exact-match filters, only on fields the schema declares filterable.
	for i := range ct.schema.Fields {
		f := &ct.schema.Fields[i]
		if !f.Filterable {
			continue
		}
		if value := c.Query(f.Name); value != "" {
			q.Filter[f.Name] = value
		}
	}

	if sortField := c.Query("sort"); sortField != "" {
		if f := ct.schema.Field(sortField); f != nil {
			q.Sort = []SortKey{{
				Field:  sortField,
				Desc:   strings.EqualFold(c.Query("order"), "desc"),
				Ranked: f.Type == Enum,
			}}
		}
	}

	records, err := ct.svc.List(c.Request.Context(), q)
	if err != nil {
		ct.respondError(c, err)
		return
	}

	data := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		data = append(data, ct.present(rec))
	}

	response.SuccessWithCount(c, http.StatusOK, data, len(data))
}

// ========== UPDATE: PUT /{resource}/:id ==========
func (ct *Controller) Update(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Request body must be a JSON object")
		return
	}

	actor, _ := auth.FromContext(c)

	rec, err := ct.svc.Update(c.Request.Context(), c.Param("id"), input, actor)
	if err != nil {
		ct.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK,
		capitalize(ct.schema.Name)+" updated successfully", ct.present(rec))
}

// ========== DELETE: DELETE /{resource}/:id ==========
func (ct *Controller) Delete(c *gin.Context) {
	if err := ct.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ct.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK,
		capitalize(ct.schema.Name)+" deleted successfully", nil)
}

// respondError maps a service error to the envelope. Expected errors carry
// their real message; anything unexpected logs the detail and answers with a
// generic 500.
func (ct *Controller) respondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	code := ErrorCode(err)

	if validationErr, ok := asValidationError(err); ok {
		response.ErrorWithDetails(c, status, code, "Validation Error", validationErr.Violations)
		return
	}

	if status == http.StatusInternalServerError {
		logger.Error(ct.schema.Name+" handler error", err)
		response.InternalServerError(c, "Server Error")
		return
	}

	response.ErrorResponse(c, status, code, capitalize(err.Error()))
}

func asValidationError(err error) (*ValidationError, bool) {
	validationErr, ok := err.(*ValidationError)
	return validationErr, ok
}

// present shapes a record for the response, deferring to the schema's
// presenter when it has one.
func (ct *Controller) present(rec *Record) map[string]interface{} {
	if ct.schema.Present != nil {
		return ct.schema.Present(rec)
	}
	return DefaultPresent(rec)
}

// DefaultPresent is the standard response shape: id, the record's fields,
// optional owner, and both timestamps.
func DefaultPresent(rec *Record) map[string]interface{} {
	out := make(map[string]interface{}, len(rec.Fields)+4)
	for name, value := range rec.Fields {
		out[name] = value
	}
	out["id"] = rec.ID
	if rec.OwnerID != "" {
		out["ownerId"] = rec.OwnerID
	}
	out["createdAt"] = rec.CreatedAt
	out["updatedAt"] = rec.UpdatedAt
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
