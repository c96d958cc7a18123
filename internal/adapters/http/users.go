package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fastlab/regain-api/internal/infrastructure/datastore"
	"github.com/fastlab/regain-api/internal/infrastructure/logger"
)

const userMissing = "Error: User doesn't exist"

// UserHandler serves the user routes. Users follow the uniform resource
// shape but are keyed by email rather than id for lookup, update and
// delete, and carry two extra operations for the onboarding flow.
type UserHandler struct {
	store *datastore.Store
	log   *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(store *datastore.Store, log *logger.Logger) *UserHandler {
	return &UserHandler{store: store, log: log}
}

// Register mounts the user route family.
func (h *UserHandler) Register(e *echo.Echo) {
	e.GET("/user/list", h.List)
	e.GET("/user/getUserByEmail/:email", h.GetByEmail)
	e.POST("/user/create", h.Create)
	e.PUT("/user/update", h.Update)
	e.DELETE("/user/delete", h.Delete)
	e.PUT("/user/updateExerciseTargets", h.UpdateExerciseTargets)
}

// List returns every user verbatim.
func (h *UserHandler) List(c echo.Context) error {
	doc, err := h.store.Load()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc.Users)
}

// GetByEmail returns the first user with a matching email, or the
// not-found sentinel string with a 200 status.
func (h *UserHandler) GetByEmail(c echo.Context) error {
	email := c.Param("email")
	doc, err := h.store.Load()
	if err != nil {
		return err
	}
	for _, rec := range doc.Users {
		if datastore.StringField(rec, "email") == email {
			return c.JSON(http.StatusOK, rec)
		}
	}
	return c.JSON(http.StatusOK, userMissing)
}

// Create appends the posted user, assigning an id when omitted.
func (h *UserHandler) Create(c echo.Context) error {
	body := bindRecord(c)
	if datastore.StringField(body, "id") == "" {
		body["id"] = uuid.NewString()
	}
	if _, err := h.store.Update(func(doc *datastore.Document) (any, error) {
		doc.Users = append(doc.Users, body)
		return nil, nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, body)
}

// Update shallow-merges the body onto the user matched by email.
func (h *UserHandler) Update(c echo.Context) error {
	body := bindRecord(c)
	merged, err := h.mutateByEmail(datastore.StringField(body, "email"), func(user datastore.Record) {
		datastore.Merge(user, body)
	})
	if err != nil {
		if _, ok := err.(errRecordMissing); ok {
			return c.JSON(http.StatusInternalServerError, userMissing)
		}
		return err
	}
	return c.JSON(http.StatusOK, merged)
}

// Delete removes every user matching the body's email and persists
// unconditionally.
func (h *UserHandler) Delete(c echo.Context) error {
	body := bindRecord(c)
	email := datastore.StringField(body, "email")
	if _, err := h.store.Update(func(doc *datastore.Document) (any, error) {
		doc.Users = reject(doc.Users, "email", email)
		return nil, nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted"})
}

// UpdateExerciseTargets replaces the user's exercise-assignment list
// wholesale; there is no merging of individual assignments.
func (h *UserHandler) UpdateExerciseTargets(c echo.Context) error {
	body := bindRecord(c)
	updated, err := h.mutateByEmail(datastore.StringField(body, "email"), func(user datastore.Record) {
		if v, ok := body["exercises"]; ok {
			user["exercises"] = v
		} else {
			delete(user, "exercises")
		}
	})
	if err != nil {
		if _, ok := err.(errRecordMissing); ok {
			return c.JSON(http.StatusInternalServerError, userMissing)
		}
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateGroupsAndOnboarding backs the userGroup update route. Despite the
// route name it mutates the User record, replacing the embedded groups
// list and/or the onboard flag; the web app has depended on this since
// the userGroups join table stopped being populated.
func (h *UserHandler) UpdateGroupsAndOnboarding(c echo.Context) error {
	body := bindRecord(c)
	updated, err := h.mutateByEmail(datastore.StringField(body, "email"), func(user datastore.Record) {
		if v, ok := body["groups"]; ok && v != nil {
			user["groups"] = v
		}
		if v, ok := body["onboard"]; ok {
			user["onboard"] = v
		}
	})
	if err != nil {
		if _, ok := err.(errRecordMissing); ok {
			return c.JSON(http.StatusInternalServerError, "Error: User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// mutateByEmail applies fn to the first user with a matching email and
// stamps updatedAt. Returns errRecordMissing without persisting when no
// user matches.
func (h *UserHandler) mutateByEmail(email string, fn func(user datastore.Record)) (any, error) {
	return h.store.Update(func(doc *datastore.Document) (any, error) {
		for _, rec := range doc.Users {
			if datastore.StringField(rec, "email") == email {
				fn(rec)
				rec["updatedAt"] = datastore.NowISO()
				return rec, nil
			}
		}
		return nil, errRecordMissing{}
	})
}
