package handler

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/auth"
	"github.com/honeynil/LavenderPOS/internal/models"
	service "github.com/honeynil/LavenderPOS/internal/services"
	pkgerrors "github.com/honeynil/LavenderPOS/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const dashboardTimeLayout = "03:04PM on <br />January 02, 2006"

//go:embed templates/*.html
var templateFS embed.FS

// Sessions is the part of auth.SessionManager the handlers depend on.
type Sessions interface {
	UserFromRequest(r *http.Request) (int32, bool)
	Issue(ctx context.Context, userID int32) (string, error)
	SetCookie(w http.ResponseWriter, token string)
	Revoke(ctx context.Context, userID int32) error
}

type Handler struct {
	service   service.POSService
	sessions  Sessions
	validate  *validator.Validate
	templates *template.Template
}

func NewHandler(s service.POSService, sessions Sessions) *Handler {
	return &Handler{
		service:   s,
		sessions:  sessions,
		validate:  validator.New(),
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type resultResponse struct {
	Result string `json:"result"`
}

type barcodeRequest struct {
	Barcode string `json:"barcode"`
}

type claimRequest struct {
	Barcode string   `json:"barcode" validate:"required"`
	Secret  string   `json:"secret" validate:"required"`
	Amount  *float64 `json:"amount" validate:"required,gte=0"`
}

type purchaseResponse struct {
	Barcode string `json:"barcode"`
	Status  string `json:"status"`
}

type homePage struct {
	User         *models.User
	Message      string
	SignUp       SignUpForm
	SignUpErrors map[string]string
	SignIn       SignInForm
}

type dashboardRow struct {
	Company string
	Amount  float64
	Time    template.HTML
}

type dashboardPage struct {
	User         *models.User
	Transactions []dashboardRow
}

type purchasePage struct {
	User     *models.User
	Barcode  string
	ImageURL string
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Index).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/agent/claim-barcode", h.ClaimBarcode).Methods(http.MethodPost)
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/log-out", h.LogOut).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/purchase", h.Purchase).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/purchase/qr.png", h.PurchaseQR).Methods(http.MethodGet)
	r.HandleFunc("/api/web/polling-check-scan", h.PollingCheckScan).Methods(http.MethodPost)
	r.HandleFunc("/api/web/cancel-purchase", h.CancelPurchase).Methods(http.MethodPost)
}

// Index serves both the sign-up and the sign-in form. Sign-up is tried first.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.UserFromRequest(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	page := homePage{SignUpErrors: map[string]string{}}
	if r.Method != http.MethodPost {
		h.render(w, "home.html", page)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, "home.html", page)
		return
	}

	page.SignUp = signUpFromValues(r.PostForm)
	page.SignIn = signInFromValues(r.PostForm)

	if r.PostForm.Has("email") {
		if err := h.validate.Struct(page.SignUp); err != nil {
			page.SignUpErrors = formErrors(err)
			h.render(w, "home.html", page)
			return
		}
		user, err := h.service.SignUp(r.Context(), service.SignUpInput{
			FirstName: page.SignUp.FirstName,
			LastName:  page.SignUp.LastName,
			Email:     page.SignUp.Email,
			Password:  page.SignUp.Password,
		})
		if err != nil {
			if errors.Is(err, pkgerrors.ErrUserAlreadyExists) {
				page.Message = "Email already registered."
			} else {
				page.Message = "Could not create the account."
			}
			h.render(w, "home.html", page)
			return
		}
		h.startSession(w, r, user.ID)
		return
	}

	if err := h.validate.Struct(page.SignIn); err != nil {
		h.render(w, "home.html", page)
		return
	}
	user, err := h.service.SignIn(r.Context(), page.SignIn.Email, page.SignIn.Password)
	if err != nil {
		page.Message = "Invalid email or password."
		h.render(w, "home.html", page)
		return
	}
	h.startSession(w, r, user.ID)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int32) {
	token, err := h.sessions.Issue(r.Context(), userID)
	if err != nil {
		slog.Error("failed to issue session", "user_id", userID, "error", err)
		h.render(w, "home.html", homePage{Message: "Could not sign in.", SignUpErrors: map[string]string{}})
		return
	}
	h.sessions.SetCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *Handler) LogOut(w http.ResponseWriter, r *http.Request) {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		if err := h.sessions.Revoke(r.Context(), userID); err != nil {
			slog.Error("failed to revoke session", "user_id", userID, "error", err)
		}
	}
	auth.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// currentUser loads the signed-in user for page headers. A lookup failure only hides the header.
func (h *Handler) currentUser(r *http.Request) (int32, *models.User) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load user", "user_id", userID, "error", err)
		return userID, nil
	}
	return userID, user
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, user := h.currentUser(r)

	views, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load dashboard", "user_id", userID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rows := make([]dashboardRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, dashboardRow{
			Company: v.Company,
			Amount:  v.Amount,
			Time:    template.HTML(v.CreatedAt.Format(dashboardTimeLayout)),
		})
	}
	h.render(w, "dashboard.html", dashboardPage{User: user, Transactions: rows})
}

// Purchase issues a fresh barcode on GET and confirms one on a valid POST.
// An invalid form post falls back to issuing a new barcode.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if form, isJSON, ok := h.decodePurchase(r); ok {
			h.confirmPurchase(w, r, form.Barcode, isJSON)
			return
		} else if isJSON {
			h.writeError(w, http.StatusBadRequest, "Invalid barcode.")
			return
		}
	}

	userID, user := h.currentUser(r)
	ticket, err := h.service.StartPurchase(r.Context(), userID)
	if err != nil {
		slog.Error("failed to start purchase", "user_id", userID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, "purchase.html", purchasePage{
		User:     user,
		Barcode:  ticket.Pending.Barcode,
		ImageURL: ticket.ImageURL,
	})
}

func (h *Handler) decodePurchase(r *http.Request) (PurchaseForm, bool, bool) {
	var form PurchaseForm
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	isJSON := ct == "application/json"
	if isJSON {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return form, true, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return form, false, false
		}
		form.Barcode = r.PostForm.Get("barcode")
	}
	return form, isJSON, h.validate.Struct(form) == nil
}

func (h *Handler) confirmPurchase(w http.ResponseWriter, r *http.Request, barcode string, isJSON bool) {
	userID, _ := auth.UserIDFromContext(r.Context())

	status := "success"
	if _, err := h.service.ConfirmPurchase(r.Context(), userID, barcode); err != nil {
		slog.Warn("purchase confirmation failed", "user_id", userID, "barcode", barcode, "error", err)
		status = "fail"
	}

	if isJSON {
		h.writeJSON(w, http.StatusOK, purchaseResponse{Barcode: barcode, Status: status})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *Handler) PurchaseQR(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	barcode := r.URL.Query().Get("barcode")
	if !service.IsBarcode(barcode) {
		http.Error(w, "Invalid barcode", http.StatusBadRequest)
		return
	}

	if _, err := h.service.PendingForUser(r.Context(), userID, barcode); err != nil {
		if errors.Is(err, pkgerrors.ErrUnknownBarcode) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to load pending transaction", "user_id", userID, "barcode", barcode, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	png, err := qrcode.Encode(barcode, qrcode.Medium, 256)
	if err != nil {
		slog.Error("failed to encode QR code", "barcode", barcode, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) PollingCheckScan(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req barcodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	status, err := h.service.CheckScan(r.Context(), userID, req.Barcode)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUnknownBarcode) {
			h.writeError(w, http.StatusOK, "Unknown barcode.")
			return
		}
		slog.Error("polling check failed", "user_id", userID, "barcode", req.Barcode, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) CancelPurchase(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req barcodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	err := h.service.CancelPurchase(r.Context(), userID, req.Barcode)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, resultResponse{Result: "Cancelled."})
	case errors.Is(err, pkgerrors.ErrUnknownBarcode):
		h.writeError(w, http.StatusOK, "Unknown barcode.")
	case errors.Is(err, pkgerrors.ErrBarcodeNotClaimed):
		h.writeError(w, http.StatusOK, "Barcode not claimed.")
	case errors.Is(err, pkgerrors.ErrBarcodeAlreadyConfirmed):
		h.writeError(w, http.StatusOK, "Barcode already confirmed.")
	default:
		slog.Error("cancel failed", "user_id", userID, "barcode", req.Barcode, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// ClaimBarcode is called by vendor agents. The shared secret is their only credential.
func (h *Handler) ClaimBarcode(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	err := h.service.ClaimBarcode(r.Context(), req.Barcode, req.Secret, *req.Amount)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, resultResponse{Result: "Success!"})
	case errors.Is(err, pkgerrors.ErrUnknownBarcode):
		h.writeJSON(w, http.StatusOK, resultResponse{Result: "Unknown barcode."})
	case errors.Is(err, pkgerrors.ErrUnknownVendor):
		h.writeJSON(w, http.StatusOK, resultResponse{Result: "Unknown vendor."})
	case errors.Is(err, pkgerrors.ErrBarcodeAlreadyConfirmed):
		h.writeJSON(w, http.StatusOK, resultResponse{Result: "Barcode already confirmed."})
	default:
		slog.Error("claim failed", "barcode", req.Barcode, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}
