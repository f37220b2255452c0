package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/meridian-shop/meridian/internal/authz"
)

// MountRoutes attaches order routes under /orders.
func (h *Handler) MountRoutes(r chi.Router, az authz.Middleware) {
	r.Route("/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(az.RequireActor)
			r.Post("/", h.create)
			r.Get("/my", h.listMine)
			r.Get("/{ref}", h.get)
			r.Put("/{ref}/items", h.editItems)
			r.Post("/{ref}/cancel", h.cancel)
		})
		r.Group(func(r chi.Router) {
			r.Use(az.RequireOrderManager)
			r.Get("/", h.list)
			r.Post("/{ref}/status", h.changeStatus)
		})
	})
}
