// Package session exposes running simulations and world previews over HTTP.
package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-warden/api/identity"
	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	gamesession "github.com/beka-birhanu/vinom-warden/game/session"
	"github.com/beka-birhanu/vinom-warden/service"
	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestTimeout = 2 * time.Second

// Controller serves sessions and world previews.
type Controller struct {
	sessions  i.SessionManager
	previewer i.WorldPreviewer
	base      *config.Scenario
}

// NewController creates a Controller. base is the scenario requests start from.
func NewController(sm i.SessionManager, wp i.WorldPreviewer, base *config.Scenario) (*Controller, error) {
	if sm == nil || wp == nil || base == nil {
		return nil, service.ErrMissingDependency
	}
	return &Controller{sessions: sm, previewer: wp, base: base}, nil
}

// RegisterPublic registers read-only routes.
func (c *Controller) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/worlds/preview", c.preview)

	sessions := route.Group("/sessions")
	{
		sessions.GET("/:ID", c.status)
		sessions.GET("/:ID/world", c.world)
		sessions.GET("/:ID/transitions", c.transitions)
	}
}

// RegisterProtected registers routes that start, steer or stop sessions.
func (c *Controller) RegisterProtected(route *gin.RouterGroup) {
	sessions := route.Group("/sessions")
	{
		sessions.POST("", c.create)
		sessions.PUT("/:ID/intruder", c.command)
		sessions.DELETE("/:ID", c.stop)
	}
}

// scenario builds the scenario a request asks for.
func (c *Controller) scenario(ctx *gin.Context) (*config.Scenario, error) {
	var request ScenarioRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	sc := c.base
	if request.Scenario != "" {
		var err error
		if sc, err = c.base.Override([]byte(request.Scenario)); err != nil {
			return nil, err
		}
	}
	if request.Seed != nil {
		copied := *sc
		copied.Seed = *request.Seed
		sc = &copied
	}
	return sc, nil
}

func (c *Controller) preview(ctx *gin.Context) {
	sc, err := c.scenario(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	view, err := c.previewer.Preview(timeoutCtx, sc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (c *Controller) create(ctx *gin.Context) {
	operator, ok := identity.OperatorID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	sc, err := c.scenario(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := c.sessions.NewSession(ctx, operator, sc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, &CreateSessionResponse{ID: id.String()})
}

func (c *Controller) status(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}
	st, err := c.sessions.Status(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, st)
}

func (c *Controller) world(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}
	rows, err := c.sessions.Layout(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, &WorldResponse{Rows: rows})
}

func (c *Controller) transitions(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	ts, err := c.sessions.Transitions(timeoutCtx, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, &TransitionsResponse{Transitions: toTransitionDTOs(ts)})
}

func (c *Controller) command(ctx *gin.Context) {
	operator, ok := identity.OperatorID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	var cmd gamesession.Command
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.sessions.Command(id, operator, cmd); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *Controller) stop(ctx *gin.Context) {
	operator, ok := identity.OperatorID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	var err error
	if ctx.Query("purge") == "true" {
		timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		err = c.sessions.Purge(timeoutCtx, id, operator)
	} else {
		err = c.sessions.Stop(id, operator)
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// sessionID parses the :ID path parameter, answering 400 when it is not a uuid.
func sessionID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrTooManySessions), errors.Is(err, service.ErrShuttingDown):
		status = http.StatusServiceUnavailable
	case errors.Is(err, config.ErrInvalidScenario), errors.Is(err, game.ErrInvalidSpec),
		errors.Is(err, game.ErrOutOfBounds), errors.Is(err, gamesession.ErrBadStance):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrPathResolutionFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
