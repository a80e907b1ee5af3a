package handler

import (
	"strings"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/application"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/room"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/auth"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/middleware"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/response"
	"github.com/gin-gonic/gin"
)

// RoomHandler handles HTTP requests for rooms and the provider dashboard.
type RoomHandler struct {
	rooms     *application.RoomService
	dashboard *application.DashboardService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms *application.RoomService, dashboard *application.DashboardService) *RoomHandler {
	return &RoomHandler{rooms: rooms, dashboard: dashboard}
}

// RegisterRoutes registers room and dashboard routes. Listing and reading rooms is
// public.
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	providerRole := middleware.RequireRole(auth.RoleProvider)

	rooms := r.Group("/rooms")
	{
		rooms.GET("", h.ListAvailable)
		rooms.POST("", authMW, providerRole, h.CreateRoom)
		rooms.GET("/mine", authMW, providerRole, h.ListMine)
		rooms.GET("/:id", h.GetRoom)
	}

	r.GET("/dashboard/provider", authMW, providerRole, h.ProviderDashboard)
}

// CreateRoom handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.rooms.CreateRoom(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListAvailable handles GET /api/v1/rooms?price_min=&price_max=&hostel_name=
func (h *RoomHandler) ListAvailable(c *gin.Context) {
	page, limit := pageParams(c)

	var filter room.ListFilter
	var ok bool
	if filter.PriceMinMinor, ok = int64Query(c, "price_min"); !ok {
		return
	}
	if filter.PriceMaxMinor, ok = int64Query(c, "price_max"); !ok {
		return
	}
	filter.HostelName = strings.TrimSpace(c.Query("hostel_name"))

	rooms, total, err := h.rooms.ListAvailableRooms(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, rooms, total, page, limit)
}

// ListMine handles GET /api/v1/rooms/mine
func (h *RoomHandler) ListMine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	rooms, err := h.rooms.ListMyRooms(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, rooms)
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := uuidParam(c, "id", "room ID")
	if !ok {
		return
	}

	dto, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ProviderDashboard handles GET /api/v1/dashboard/provider
func (h *RoomHandler) ProviderDashboard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	dto, err := h.dashboard.ProviderDashboard(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
