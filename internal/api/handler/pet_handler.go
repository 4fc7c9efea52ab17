package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"petshop/internal/api/middleware"
	"petshop/internal/app/service"
	"petshop/internal/common"
	"petshop/internal/domain/model"
)

type PetHandler struct {
	petService *service.PetService
}

func NewPetHandler(petService *service.PetService) *PetHandler {
	return &PetHandler{petService: petService}
}

func (h *PetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/list", h.listPets)  // GET /api/pet/list
	r.Get("/{petId}", h.getPet) // GET /api/pet/{petId}

	r.Group(func(gated chi.Router) {
		gated.With(middleware.RequirePermission(model.PermInsertPet)).Put("/new", h.createPet)
		gated.With(middleware.RequirePermission(model.PermUpdatePet)).Put("/{petId}", h.updatePet)
		gated.With(middleware.RequirePermission(model.PermDeletePet)).Delete("/{petId}", h.deletePet)
	})
}

func (h *PetHandler) listPets(w http.ResponseWriter, r *http.Request) {
	pets, err := h.petService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, pets)
}

func (h *PetHandler) getPet(w http.ResponseWriter, r *http.Request) {
	petID, ok := validID(chi.URLParam(r, "petId"))
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, "Pet not found.")
		return
	}
	pet, err := h.petService.Get(r.Context(), petID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, pet)
}

func (h *PetHandler) createPet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	var req service.CreatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	pet, err := h.petService.Create(r.Context(), actor, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, pet)
}

func (h *PetHandler) updatePet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	petID, ok := validID(chi.URLParam(r, "petId"))
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, "Pet not found.")
		return
	}

	var req service.UpdatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	pet, err := h.petService.Update(r.Context(), actor, petID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, pet)
}

func (h *PetHandler) deletePet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	petID, ok := validID(chi.URLParam(r, "petId"))
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, "Pet not found.")
		return
	}

	if err := h.petService.Delete(r.Context(), actor, petID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Pet deleted."})
}
