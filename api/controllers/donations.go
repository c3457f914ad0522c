package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/api/responses"
	"github.com/mealbridge/mealbridge-backend/api/validators"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// DonationCreate records a new donation in the pending state.
func DonationCreate(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}

		userID, role, err := subjectFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body donations.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), donations.Actor{UserID: userID, Role: role}, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// DonationsAvailable lists claimable donations, newest first.
func DonationsAvailable(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := donations.AvailableFilters{Now: time.Now().UTC()}
		if raw := strings.TrimSpace(r.URL.Query().Get("food_type")); raw != "" {
			foodType, err := enums.ParseFoodType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid food_type"))
				return
			}
			filters.FoodType = &foodType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("donor_type")); raw != "" {
			donorType, err := enums.ParseDonorType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid donor_type"))
				return
			}
			filters.DonorType = &donorType
		}

		list, err := svc.ListAvailable(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DonationsByDonor lists a specific donor's donations, newest first.
func DonationsByDonor(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}

		donorID, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByDonor(r.Context(), donorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DonationsMine lists the caller's own donations.
func DonationsMine(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return listForActor(svc, logg, donations.Service.ListMine)
}

// DonationsMyReservations lists donations the caller has reserved.
func DonationsMyReservations(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return listForActor(svc, logg, donations.Service.ListMyReservations)
}

// DonationsDashboard summarizes the caller's donation activity.
func DonationsDashboard(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}

		userID, role, err := subjectFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Dashboard(r.Context(), donations.Actor{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// DonationPublish moves a pending donation into the available pool.
func DonationPublish(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, donations.Service.Publish)
}

// DonationReserve claims an available donation for the caller.
func DonationReserve(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, donations.Service.Reserve)
}

// DonationCollect marks a reserved donation as picked up.
func DonationCollect(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, donations.Service.Collect)
}

// DonationComplete closes out a collected donation.
func DonationComplete(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, donations.Service.Complete)
}

type actorListFn func(donations.Service, context.Context, donations.Actor, pagination.Params) (*donations.DonationList, error)

func listForActor(svc donations.Service, logg *logger.Logger, list actorListFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}

		userID, role, err := subjectFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := list(svc, r.Context(), donations.Actor{UserID: userID, Role: role}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type transitionFn func(donations.Service, context.Context, donations.Actor, uuid.UUID) (*donations.DonationDTO, error)

func transitionHandler(svc donations.Service, logg *logger.Logger, transition transitionFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}

		userID, role, err := subjectFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := transition(svc, r.Context(), donations.Actor{UserID: userID, Role: role}, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}
