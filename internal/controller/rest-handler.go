package controller

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/watchroom/server/internal/service/catalog"
	"github.com/watchroom/server/internal/service/identity"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/rest"
)

func (c *controller) authenticate(r *http.Request) (identity.Participant, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return identity.Participant{}, identity.ErrInvalidToken
	}

	return c.identityService.Parse(token)
}

func (c *controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapError(err)
	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error(), "code": code})
}

type loginRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=32"`
}

type loginResponse struct {
	Token       string               `json:"token"`
	Participant identity.Participant `json:"participant"`
}

func (c *controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	loginResp, err := c.identityService.Login(req.DisplayName)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": loginResponse{
		Token:       loginResp.Token,
		Participant: loginResp.Participant,
	}})
}

func (c *controller) listVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := c.catalogService.List(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": videos})
}

func (c *controller) getVideo(w http.ResponseWriter, r *http.Request) {
	video, err := c.catalogService.Lookup(r.Context(), chi.URLParam(r, "video-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": video})
}

type addVideoRequest struct {
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1024"`
	URL         string `json:"url" validate:"required,url"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
}

func (c *controller) addVideo(w http.ResponseWriter, r *http.Request) {
	participant, err := c.authenticate(r)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	var req addVideoRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	video, err := c.catalogService.Add(r.Context(), &catalog.AddVideoParams{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Thumbnail:   req.Thumbnail,
		UploadedBy:  participant.Id,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": video})
}

func (c *controller) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.roomService.ListActiveRooms(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rooms})
}

type createRoomRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type createRoomResponse struct {
	RoomId string            `json:"room_id"`
	Room   room.RoomSnapshot `json:"room"`
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	participant, err := c.authenticate(r)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	createResp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Name:        req.Name,
		CreatorId:   participant.Id,
		CreatorName: participant.DisplayName,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomResponse{
		RoomId: createResp.RoomId,
		Room:   createResp.Snapshot,
	}})
}

func (c *controller) getRoom(w http.ResponseWriter, r *http.Request) {
	snapshot, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": snapshot})
}
