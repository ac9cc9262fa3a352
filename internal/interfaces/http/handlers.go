package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/leave-approval/internal/application/dispatcher"
	"github.com/garyjia/leave-approval/internal/application/service"
	"github.com/garyjia/leave-approval/internal/application/workflow"
	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/notification"
	domainwf "github.com/garyjia/leave-approval/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	workflow    workflow.ApprovalWorkflow
	directory   service.DirectoryService
	dispatcher  dispatcher.Dispatcher
	health      HealthFunc
	asyncNotify bool
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, asyncNotify bool) *Handlers {
	return &Handlers{
		workflow:    deps.Workflow,
		directory:   deps.Directory,
		dispatcher:  deps.Dispatcher,
		health:      deps.Health,
		asyncNotify: asyncNotify,
		logger:      deps.Logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// RequestResponse represents a leave request in API responses
type RequestResponse struct {
	ID              int64  `json:"id"`
	EmployeeID      int64  `json:"employee_id"`
	EmployeeName    string `json:"employee_name,omitempty"`
	Department      string `json:"department,omitempty"`
	Category        string `json:"category"`
	Subcategory     string `json:"subcategory,omitempty"`
	Relation        string `json:"relation,omitempty"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Duration        int    `json:"duration"`
	Note            string `json:"note,omitempty"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	ApprovedBy      string `json:"approved_by,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`

	// AllowedActions are the transitions the request still accepts
	AllowedActions []string `json:"allowed_actions"`
}

// SubmitRequest is the body of POST /api/requests
type SubmitRequest struct {
	EmployeeID  int64  `json:"employee_id" binding:"required,gt=0"`
	Category    string `json:"category" binding:"required,leavecategory"`
	Subcategory string `json:"subcategory" binding:"omitempty,oneof=first_degree second_degree singleton twin"`
	Relation    string `json:"relation" binding:"leaverelation"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Days        int    `json:"days" binding:"omitempty,gte=1"`
	Note        string `json:"note" binding:"max=1000"`
	Actor       string `json:"actor"`
}

// ActionRequest is the body of approve, reject and cancel calls
type ActionRequest struct {
	Actor  string `json:"actor" binding:"required"`
	Reason string `json:"reason" binding:"max=1000"`
}

// PendingQuery holds the query parameters of GET /api/pending
type PendingQuery struct {
	Role       string `form:"role" binding:"required,oneof=head manager"`
	Department string `form:"department"`
}

// RegisterEmployeeRequest is the body of POST /api/employees
type RegisterEmployeeRequest struct {
	Name                string `json:"name" binding:"required"`
	Department          string `json:"department" binding:"required"`
	JobGrade            string `json:"job_grade"`
	Balance             *int   `json:"balance" binding:"omitempty,gte=0"`
	NotificationAddress string `json:"notification_address"`
}

// AssignHeadRequest is the body of PUT /api/departments/:name/head
type AssignHeadRequest struct {
	EmployeeID int64 `json:"employee_id" binding:"required,gt=0"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if h.health != nil {
		healthy, details := h.health(c.Request.Context())
		response.Components = details
		if !healthy {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// SubmitRequest handles POST /api/requests
func (h *Handlers) SubmitRequest(c *gin.Context) {
	var req SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	period, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.workflow.Submit(c.Request.Context(), workflow.SubmitInput{
		EmployeeID:  req.EmployeeID,
		Category:    entity.Category(req.Category),
		Subcategory: entity.Subcategory(req.Subcategory),
		Relation:    entity.Relation(req.Relation),
		Period:      period,
		Days:        req.Days,
		Note:        req.Note,
		Actor:       req.Actor,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.publish(c.Request.Context(), result.Intent)
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toRequestResponse(result.Request),
	})
}

// GetRequest handles GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	req, err := h.workflow.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(req)})
}

// GetHistory handles GET /api/requests/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	history, err := h.workflow.History(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if history == nil {
		history = []*entity.RequestHistory{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// ApproveByHead handles POST /api/requests/:id/head/approve
func (h *Handlers) ApproveByHead(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id int64, a ActionRequest) (*workflow.Result, error) {
		return h.workflow.ApproveByHead(ctx, id, a.Actor)
	})
}

// RejectByHead handles POST /api/requests/:id/head/reject
func (h *Handlers) RejectByHead(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id int64, a ActionRequest) (*workflow.Result, error) {
		return h.workflow.RejectByHead(ctx, id, a.Actor, a.Reason)
	})
}

// ApproveByManager handles POST /api/requests/:id/manager/approve
func (h *Handlers) ApproveByManager(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id int64, a ActionRequest) (*workflow.Result, error) {
		return h.workflow.ApproveByManager(ctx, id, a.Actor)
	})
}

// RejectByManager handles POST /api/requests/:id/manager/reject
func (h *Handlers) RejectByManager(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id int64, a ActionRequest) (*workflow.Result, error) {
		return h.workflow.RejectByManager(ctx, id, a.Actor, a.Reason)
	})
}

// CancelRequest handles POST /api/requests/:id/cancel
func (h *Handlers) CancelRequest(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id int64, a ActionRequest) (*workflow.Result, error) {
		return h.workflow.Cancel(ctx, id, a.Actor, a.Reason)
	})
}

// ListPending handles GET /api/pending
func (h *Handlers) ListPending(c *gin.Context) {
	var q PendingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	requests, err := h.workflow.ListPending(c.Request.Context(), workflow.Role(q.Role), q.Department)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponses(requests)})
}

// ListEmployees handles GET /api/employees
func (h *Handlers) ListEmployees(c *gin.Context) {
	employees, err := h.directory.ListEmployees(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if employees == nil {
		employees = []*entity.Employee{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: employees})
}

// RegisterEmployee handles POST /api/employees
func (h *Handlers) RegisterEmployee(c *gin.Context) {
	var req RegisterEmployeeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	balance := entity.DefaultAnnualBalance
	if req.Balance != nil {
		balance = *req.Balance
	}

	emp := &entity.Employee{
		Name:                req.Name,
		Department:          req.Department,
		JobGrade:            req.JobGrade,
		Balance:             balance,
		NotificationAddress: req.NotificationAddress,
	}
	if err := h.directory.RegisterEmployee(c.Request.Context(), emp); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: emp})
}

// GetEmployee handles GET /api/employees/:id
func (h *Handlers) GetEmployee(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	emp, err := h.directory.Employee(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: emp})
}

// BalanceResponse is the body of GET /api/employees/:id/balance
type BalanceResponse struct {
	EmployeeID int64 `json:"employee_id"`
	Balance    int   `json:"balance"`
}

// GetBalance handles GET /api/employees/:id/balance
func (h *Handlers) GetBalance(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	balance, err := h.workflow.Balance(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: BalanceResponse{EmployeeID: id, Balance: balance}})
}

// ListEmployeeRequests handles GET /api/employees/:id/requests
func (h *Handlers) ListEmployeeRequests(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	requests, err := h.workflow.ListByEmployee(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponses(requests)})
}

// ListHeads handles GET /api/departments/heads
func (h *Handlers) ListHeads(c *gin.Context) {
	heads, err := h.directory.ListHeads(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if heads == nil {
		heads = []*entity.DepartmentHead{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: heads})
}

// AssignHead handles PUT /api/departments/:name/head
func (h *Handlers) AssignHead(c *gin.Context) {
	var req AssignHeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	head, err := h.directory.AssignHead(c.Request.Context(), c.Param("name"), req.EmployeeID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: head})
}

// RemoveHead handles DELETE /api/departments/:name/head
func (h *Handlers) RemoveHead(c *gin.Context) {
	if err := h.directory.RemoveHead(c.Request.Context(), c.Param("name")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

type transitionFunc func(ctx context.Context, id int64, action ActionRequest) (*workflow.Result, error)

// transition binds the path ID and body, runs fn and publishes its intent
func (h *Handlers) transition(c *gin.Context, fn transitionFunc) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var action ActionRequest
	if !h.bindJSON(c, &action) {
		return
	}

	result, err := fn(c.Request.Context(), id, action)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.publish(c.Request.Context(), result.Intent)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toRequestResponse(result.Request),
	})
}

// publish hands a committed intent to the dispatcher. Delivery failures are
// logged only; the transition already stands.
func (h *Handlers) publish(ctx context.Context, intent *notification.Intent) {
	if intent == nil {
		return
	}
	if h.asyncNotify {
		h.dispatcher.DispatchAsync(ctx, intent)
		return
	}
	if err := h.dispatcher.Dispatch(ctx, intent); err != nil {
		h.logger.Error("Notification delivery failed",
			"error", err,
			"intent_id", intent.ID,
			"type", intent.Type,
			"request_id", intent.RequestID,
		)
	}
}

func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, fmt.Sprintf("invalid %s %q", name, raw), err)
		return 0, false
	}
	return id, true
}

func (h *Handlers) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.badRequest(c, "invalid request body", err)
		return false
	}
	return true
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	detail := msg
	if err != nil {
		detail = fmt.Sprintf("%s: %v", msg, err)
	}
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   detail,
		Code:    CodeValidation,
	})
}

// fail writes the error response for a business or internal error
func (h *Handlers) fail(c *gin.Context, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		msg = "internal error"
	}
	c.JSON(status, Response{
		Success: false,
		Error:   msg,
		Code:    code,
	})
}

func parsePeriod(start, end string) (entity.DateRange, error) {
	if strings.TrimSpace(end) == "" {
		s, err := entity.ParseDate("start", start)
		if err != nil {
			return entity.DateRange{}, err
		}
		return entity.NewDateRange(s, time.Time{}), nil
	}
	return entity.ParseDateRange(start, end)
}

func toRequestResponse(req *entity.LeaveRequest) RequestResponse {
	return RequestResponse{
		ID:              req.ID,
		EmployeeID:      req.EmployeeID,
		EmployeeName:    req.EmployeeName,
		Department:      req.Department,
		Category:        string(req.Category),
		Subcategory:     string(req.Subcategory),
		Relation:        string(req.Relation),
		StartDate:       req.Period.StartString(),
		EndDate:         req.Period.EndString(),
		Duration:        req.Duration,
		Note:            req.Note,
		Status:          string(req.Status),
		RejectionReason: req.RejectionReason,
		ApprovedBy:      req.ApprovedBy,
		CreatedAt:       req.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       req.UpdatedAt.UTC().Format(time.RFC3339),
		AllowedActions:  allowedActions(req.Status),
	}
}

func allowedActions(status domainwf.State) []string {
	triggers := domainwf.AllowedTriggers(status)
	actions := make([]string, 0, len(triggers))
	for _, t := range triggers {
		actions = append(actions, t.String())
	}
	return actions
}

func toRequestResponses(requests []*entity.LeaveRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, toRequestResponse(r))
	}
	return out
}
