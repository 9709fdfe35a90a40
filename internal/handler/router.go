package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/crunchy-waffle/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса вафельной.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(custommiddleware.GzipMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, codeNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, codeValidation, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/waffles", h.GetWaffles)
		r.Get("/about", h.GetAbout)
		r.Get("/get-logo", h.GetLogo)
		r.Get("/get-offer", h.GetOffer)
		r.Get("/get-qr", h.GetQR)

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Post("/orders/create", h.CreateOrder)
		r.Get("/orders/user/{username}", h.GetUserOrders)

		r.Post("/apply-voucher", h.ApplyVoucher)

		r.Post("/messages", h.PostMessage)
		r.Get("/user-messages/{username}", h.GetUserMessages)

		r.Group(func(r chi.Router) {
			r.Use(h.adminGate.Middleware)

			r.Post("/waffles", h.AddWaffle)
			r.Delete("/waffles/{id}", h.DeleteWaffle)
			r.Post("/about", h.UpdateAbout)
			r.Post("/save-logo", h.SaveLogo)
			r.Post("/save-qr", h.SaveQR)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/get-users", h.GetUsers)
				r.Post("/update-wallet", h.UpdateWallet)
				r.Post("/approve-order", h.ApproveOrder)
				r.Post("/all-orders", h.GetAllOrders)
				r.Post("/create-voucher", h.CreateVoucher)
				r.Post("/get-messages", h.GetMessages)
				r.Post("/reply-message", h.ReplyMessage)
				r.Post("/update-offer", h.UpdateOffer)
			})
		})
	})

	r.Get("/*", h.Static)

	return r
}
