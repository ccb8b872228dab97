package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/unifiedpay/wallet-backend/internal/api/httpx"
	"github.com/unifiedpay/wallet-backend/internal/config"
	"github.com/unifiedpay/wallet-backend/internal/metrics"
	"github.com/unifiedpay/wallet-backend/internal/middleware"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
	"github.com/unifiedpay/wallet-backend/internal/services"
	"github.com/unifiedpay/wallet-backend/internal/upi"
)

var validate = validator.New()

type Deps struct {
	Cfg       config.Config
	Accounts  *services.AccountService
	Txns      *services.TransactionService
	Settings  *services.SettingsService
	Directory *services.DirectoryService
	Seeder    *services.SeedService
	AuthMW    *middleware.AuthMiddleware
}

type registerReq struct {
	Name     string `json:"name" validate:"required,min=2"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type submitTransferReq struct {
	ToUPIID  string  `json:"toUpiId" validate:"required"`
	ToName   string  `json:"toName" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Provider string  `json:"provider" validate:"required,oneof=GPay PhonePe Paytm"`
	Note     string  `json:"note"`
}

type contactReq struct {
	Name  string `json:"name" validate:"required"`
	UPIID string `json:"upi_id" validate:"required"`
	Phone string `json:"phone"`
}

type updateSettingsReq struct {
	SuccessRate *float64 `json:"success_rate" validate:"omitempty,gte=0,lte=1"`
	DelayMs     *struct {
		Min int `json:"min" validate:"gte=0"`
		Max int `json:"max" validate:"gte=0"`
	} `json:"delay_ms"`
}

type qrParseReq struct {
	Payload string `json:"payload" validate:"required"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientBalance):
		httpx.WriteError(w, http.StatusBadRequest, "Insufficient balance")
	case errors.Is(err, services.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, repo.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
	}
	return uid, ok
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			var req registerReq
			if err := decode(r, &req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad request")
				return
			}
			p, err := d.Accounts.Register(req.Name, req.Phone, req.Email, req.Password)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			httpx.WriteJSON(w, http.StatusOK, p)
		})

		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var req loginReq
			if err := decode(r, &req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad request")
				return
			}
			pair, err := d.Accounts.Login(req.Email, req.Password)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, pair)
		})

		r.Post("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			var req refreshReq
			if err := decode(r, &req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad request")
				return
			}
			pair, err := d.Accounts.Refresh(req.RefreshToken)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, pair)
		})

		// ---------- qr (no auth: payload building feeds the scanner UI) ----------
		r.Get("/qr", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			upiID, name := q.Get("upi_id"), q.Get("name")
			if !upi.ValidAddress(upiID) || name == "" {
				httpx.WriteError(w, http.StatusBadRequest, "invalid request")
				return
			}
			amount := 0.0
			if v := q.Get("amount"); v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil || f <= 0 {
					httpx.WriteError(w, http.StatusBadRequest, "invalid request")
					return
				}
				amount = f
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]string{"payload": upi.QRPayload(upiID, name, amount)})
		})

		r.Post("/qr/parse", func(w http.ResponseWriter, r *http.Request) {
			var req qrParseReq
			if err := decode(r, &req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad request")
				return
			}
			data, err := upi.ParseQRPayload(req.Payload)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			httpx.WriteJSON(w, http.StatusOK, data)
		})

		// ---------- authenticated wallet surface ----------
		r.Group(func(r chi.Router) {
			r.Use(d.AuthMW.Auth)

			r.Post("/transactions", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				var req submitTransferReq
				if err := decode(r, &req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad request")
					return
				}
				tx, err := d.Txns.Submit(uid, services.SubmitRequest{
					ToUPIID:  req.ToUPIID,
					ToName:   req.ToName,
					Amount:   req.Amount,
					Provider: models.Provider(req.Provider),
					Note:     req.Note,
				})
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"transaction": tx})
			})

			r.Get("/transactions", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				limit, offset := 50, 0
				if v := r.URL.Query().Get("limit"); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n > 0 {
						limit = n
					}
				}
				if v := r.URL.Query().Get("offset"); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n >= 0 {
						offset = n
					}
				}
				txs, err := d.Txns.ListByUser(uid, limit, offset)
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"transactions": txs})
			})

			r.Get("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				tx, err := d.Txns.GetByID(uid, chi.URLParam(r, "id"))
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"transaction": tx})
			})

			r.Get("/balance", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				balance, err := d.Accounts.Balance(uid)
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]float64{"wallet_balance": balance})
			})

			r.Get("/contacts", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				contacts, err := d.Directory.Contacts(uid)
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
			})

			r.Post("/contacts", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				var req contactReq
				if err := decode(r, &req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad request")
					return
				}
				c, err := d.Directory.SaveContact(uid, req.Name, req.UPIID, req.Phone)
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, c)
			})

			r.Delete("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				if err := d.Directory.RemoveContact(uid, chi.URLParam(r, "id")); err != nil {
					writeServiceError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Get("/upi-accounts", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				accts, err := d.Directory.UPIAccounts(uid)
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"upi_accounts": accts})
			})

			// ---------- admin ----------
			r.Get("/admin/settings", func(w http.ResponseWriter, r *http.Request) {
				settings, err := d.Settings.List()
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"settings": settings})
			})

			r.Put("/admin/settings", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := callerID(w, r)
				if !ok {
					return
				}
				var req updateSettingsReq
				if err := decode(r, &req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad request")
					return
				}
				if req.SuccessRate != nil {
					if _, err := d.Settings.UpdateSuccessRate(*req.SuccessRate, uid); err != nil {
						writeServiceError(w, err)
						return
					}
				}
				if req.DelayMs != nil {
					if _, err := d.Settings.UpdateDelayRange(req.DelayMs.Min, req.DelayMs.Max, uid); err != nil {
						writeServiceError(w, err)
						return
					}
				}
				settings, err := d.Settings.List()
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"settings": settings})
			})

			r.Post("/admin/seed", func(w http.ResponseWriter, r *http.Request) {
				users, err := d.Seeder.Seed()
				if err != nil {
					writeServiceError(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{
					"success": true,
					"message": "Demo data seeded successfully",
					"users":   users,
				})
			})
		})
	})

	return r
}
