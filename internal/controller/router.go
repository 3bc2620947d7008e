package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", c.login)

		r.Get("/videos", c.listVideos)
		r.Post("/videos", c.addVideo)
		r.Get("/videos/{video-id}", c.getVideo)

		r.Get("/rooms", c.listRooms)
		r.Post("/rooms", c.createRoom)
		r.Get("/rooms/{room-id}", c.getRoom)
	})

	r.HandleFunc("/ws/rooms/{room-id}", c.connectRoom)

	return r
}
