package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/api/transport"
	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/internal/observability/metrics"
	"github.com/fastygo/realty/pkg/httpcontext"
	"github.com/fastygo/realty/repository"
	"github.com/fastygo/realty/usecase/photo"
	"github.com/fastygo/realty/usecase/workspace"
)

const photoFormField = "photos"

// ListingHandler exposes an agent's workspace: listings, leases, showings and photos.
type ListingHandler struct {
	baseHandler
	workspaces *workspace.Registry
	maxUpload  int64
}

func NewListingHandler(workspaces *workspace.Registry, maxUpload int64, adapter *httpcontext.Adapter, logger *zap.Logger) *ListingHandler {
	if maxUpload <= 0 {
		maxUpload = photo.DefaultMaxBytes
	}
	return &ListingHandler{
		baseHandler: newBaseHandler(adapter, logger),
		workspaces:  workspaces,
		maxUpload:   maxUpload,
	}
}

func (h *ListingHandler) workspace(ctx *fasthttp.RequestCtx) (*workspace.Workspace, bool) {
	agentID, ok := h.agentID(ctx)
	if !ok {
		return nil, false
	}
	return h.workspaces.Get(agentID), true
}

func observe(action string, err error) {
	switch {
	case err == nil:
		metrics.ObserveListingAction(action, "ok")
	case domain.IsDomainError(err, domain.ErrCodeForbidden), domain.IsDomainError(err, domain.ErrCodeInvalid):
		metrics.ObserveListingAction(action, "rejected")
	default:
		metrics.ObserveListingAction(action, "error")
	}
}

// @Summary List visible listings
// @Tags listings
// @Router /api/v1/listings [get]
func (h *ListingHandler) List(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	filter, err := parseFilter(ctx.QueryArgs())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, ws.VisibleListings(filter))
}

// @Summary Get a listing
// @Tags listings
// @Router /api/v1/listings/{id} [get]
func (h *ListingHandler) Get(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	listing, err := ws.Listing(id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, listing)
}

// @Summary Create a listing
// @Tags listings
// @Router /api/v1/listings [post]
func (h *ListingHandler) Create(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	var req transport.ListingRequest
	if !h.decode(ctx, &req) {
		return
	}
	draft, err := req.Draft()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	created, err := ws.CreateListing(draft)
	observe("create", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a listing
// @Tags listings
// @Router /api/v1/listings/{id} [put]
func (h *ListingHandler) Update(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	var req transport.ListingRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch, err := req.Patch()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	updated, err := ws.UpdateListing(id, patch)
	if err == nil && updated == nil {
		err = domain.ErrListingNotFound
	}
	observe("update", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a listing
// @Tags listings
// @Router /api/v1/listings/{id} [delete]
func (h *ListingHandler) Delete(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	_, err := ws.DeleteListing(stdCtx, id)
	observe("delete", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Open a lease on a rental listing
// @Tags listings
// @Router /api/v1/listings/{id}/rental-periods [post]
func (h *ListingHandler) AddRentalPeriod(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	var req transport.RentPeriodRequest
	if !h.decode(ctx, &req) {
		return
	}
	period, err := ws.AddRentalPeriod(id, req.Input())
	if err == nil && period == nil {
		err = errRentalNotFound
	}
	observe("add_rental_period", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, period)
}

// @Summary Adjust a lease
// @Tags listings
// @Router /api/v1/listings/{id}/rental-periods/{periodId} [put]
func (h *ListingHandler) UpdateRentalPeriod(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	periodID, ok := h.int64Param(ctx, "periodId")
	if !ok {
		return
	}
	var req transport.RentPeriodPatchRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch, err := req.Patch()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	period, err := ws.UpdateRentalPeriod(id, periodID, patch)
	if err == nil && period == nil {
		err = domain.ErrPeriodNotFound
	}
	observe("update_rental_period", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, period)
}

// @Summary End a lease and free the listing
// @Tags listings
// @Router /api/v1/listings/{id}/rental-periods/{periodId}/end [post]
func (h *ListingHandler) EndRentalPeriod(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	periodID, ok := h.int64Param(ctx, "periodId")
	if !ok {
		return
	}
	period, err := ws.EndRentalPeriod(id, periodID)
	if err == nil && period == nil {
		err = domain.ErrPeriodNotFound
	}
	observe("end_rental_period", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, period)
}

// @Summary Schedule a viewing
// @Tags listings
// @Router /api/v1/listings/{id}/showings [post]
func (h *ListingHandler) AddShowing(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	var req transport.ShowingRequest
	if !h.decode(ctx, &req) {
		return
	}
	showing, err := ws.AddShowing(id, req.Input())
	if err == nil && showing == nil {
		err = domain.ErrListingNotFound
	}
	observe("add_showing", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, showing)
}

// @Summary Reschedule a viewing
// @Tags listings
// @Router /api/v1/listings/{id}/showings/{showingId} [put]
func (h *ListingHandler) UpdateShowing(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	showingID, ok := h.int64Param(ctx, "showingId")
	if !ok {
		return
	}
	var req transport.ShowingPatchRequest
	if !h.decode(ctx, &req) {
		return
	}
	showing, err := ws.UpdateShowing(id, showingID, req.Patch())
	if err == nil && showing == nil {
		err = domain.ErrShowingNotFound
	}
	observe("update_showing", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, showing)
}

// @Summary Cancel a viewing
// @Tags listings
// @Router /api/v1/listings/{id}/showings/{showingId} [delete]
func (h *ListingHandler) RemoveShowing(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	showingID, ok := h.int64Param(ctx, "showingId")
	if !ok {
		return
	}
	_, err := ws.RemoveShowing(id, showingID)
	observe("remove_showing", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

type photoResult struct {
	Name  string `json:"name"`
	Ref   string `json:"ref,omitempty"`
	Error string `json:"error,omitempty"`
}

// @Summary Upload photos to a listing (multipart field "photos")
// @Tags listings
// @Router /api/v1/listings/{id}/photos [post]
func (h *ListingHandler) AttachPhotos(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	uploads, err := h.readUploads(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	results, listing, err := ws.AttachPhotos(stdCtx, id, uploads)
	observe("attach_photos", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	out := make([]photoResult, 0, len(results))
	for _, r := range results {
		item := photoResult{Name: r.Name, Ref: r.Ref}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"results": out,
		"listing": listing,
	})
}

// @Summary Remove a photo from a listing. Data URL refs are large, so the body form is preferred over ?ref=.
// @Tags listings
// @Router /api/v1/listings/{id}/photos [delete]
func (h *ListingHandler) DetachPhoto(ctx *fasthttp.RequestCtx) {
	ws, ok := h.workspace(ctx)
	if !ok {
		return
	}
	id, ok := h.int64Param(ctx, "id")
	if !ok {
		return
	}
	var req transport.DetachPhotoRequest
	if !h.decode(ctx, &req) {
		return
	}
	ref := req.Ref
	if ref == "" {
		ref = string(ctx.QueryArgs().Peek("ref"))
	}
	if ref == "" {
		h.respondInvalid(ctx, "missing ref")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	listing, err := ws.DetachPhoto(stdCtx, id, ref)
	observe("detach_photo", err)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, listing)
}

func (h *ListingHandler) readUploads(ctx *fasthttp.RequestCtx) ([]photo.Upload, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		verr := &domain.ValidationError{}
		verr.Invalidf("expected multipart form: %v", err)
		return nil, verr
	}
	files := form.File[photoFormField]
	if len(files) == 0 {
		verr := &domain.ValidationError{}
		verr.Missing(photoFormField)
		return nil, verr
	}

	uploads := make([]photo.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		// read one byte past the limit so the vault can report oversize files by name
		data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, photo.Upload{
			Name: fh.Filename,
			Type: fh.Header.Get("Content-Type"),
			Data: data,
		})
	}
	return uploads, nil
}

var errRentalNotFound = domain.NewError(domain.ErrCodeNotFound, "rental listing not found")

func parseFilter(args *fasthttp.Args) (repository.ListingFilter, error) {
	var f repository.ListingFilter
	verr := &domain.ValidationError{}

	if raw := string(args.Peek("deal_type")); raw != "" {
		if v, err := domain.ParseDealType(raw); err != nil {
			verr.Invalidf("%v", err)
		} else {
			f.DealType = v
		}
	}
	if raw := string(args.Peek("status")); raw != "" {
		if v, err := domain.ParsePropertyStatus(raw); err != nil {
			verr.Invalidf("%v", err)
		} else {
			f.PropertyStatus = v
		}
	}
	if raw := string(args.Peek("property_type")); raw != "" {
		if v, err := domain.ParsePropertyType(raw); err != nil {
			verr.Invalidf("%v", err)
		} else {
			f.PropertyType = v
		}
	}
	f.MinPrice = decimalArg(args, "min_price", verr)
	f.MaxPrice = decimalArg(args, "max_price", verr)
	f.MinRooms = intArg(args, "min_rooms", verr)
	f.MaxRooms = intArg(args, "max_rooms", verr)
	if raw := string(args.Peek("tags")); raw != "" {
		tags, err := domain.ParseFeatures(strings.Split(raw, ","))
		if err != nil {
			verr.Invalidf("%v", err)
		} else {
			f.Tags = tags
		}
	}
	return f, verr.OrNil()
}

func decimalArg(args *fasthttp.Args, name string, verr *domain.ValidationError) *decimal.Decimal {
	raw := string(args.Peek(name))
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Invalidf("%s must be a number", name)
		return nil
	}
	return &v
}

func intArg(args *fasthttp.Args, name string, verr *domain.ValidationError) *int {
	raw := string(args.Peek(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Invalidf("%s must be an integer", name)
		return nil
	}
	return &v
}
