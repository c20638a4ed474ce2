package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/quote"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
	"github.com/GTDGit/fleetdesk_api/internal/wizard"
)

// quoteValidationErrors are the draft and payload problems a user can fix.
var quoteValidationErrors = []error{
	quote.ErrInvalidQuantity,
	quote.ErrWarrantyYearsRequired,
	quote.ErrCountryRequired,
	quote.ErrUnknownCountry,
	quote.ErrInvalidDate,
	quote.ErrUnknownCategory,
	quote.ErrUnknownOperatingSystem,
	quote.ErrUnknownServiceType,
	quote.ErrAssetRequired,
	quote.ErrAssetsRequired,
	quote.ErrAssetFieldConflict,
	quote.ErrIssueTypesRequired,
	quote.ErrIssueDescriptionRequired,
	quote.ErrInvalidImpactLevel,
	quote.ErrBuybackFunctionality,
	quote.ErrDestinationRequired,
	quote.ErrDescriptionRequired,
}

// respondError maps a service error onto the response envelope. Unknown
// errors become 500 with a generic message and are logged.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.Error(c, 404, "NOT_FOUND", "Resource not found")
	case errors.Is(err, wizard.ErrDraftNotFound):
		utils.Error(c, 404, "DRAFT_NOT_FOUND", err.Error())
	case errors.Is(err, utils.ErrInvalidDate):
		utils.Error(c, 400, "INVALID_DATE", "Invalid date format, expected yyyy-MM-dd")
	case errors.Is(err, utils.ErrInvalidDateRange):
		utils.Error(c, 400, "INVALID_DATE_RANGE", "startDate must not be after endDate")
	case errors.Is(err, utils.ErrInvalidStatus):
		utils.Error(c, 400, "INVALID_STATUS", err.Error())
	case errors.Is(err, utils.ErrValidation):
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
	case errors.Is(err, quote.ErrEmptyQuote):
		utils.Error(c, 400, "EMPTY_QUOTE", err.Error())
	case errors.Is(err, service.ErrUnknownFlow):
		utils.Error(c, 404, "UNKNOWN_FLOW", err.Error())
	case errors.Is(err, wizard.ErrStepIncomplete):
		utils.Error(c, 422, "STEP_INCOMPLETE", err.Error())
	case errors.Is(err, wizard.ErrInvalidTransition):
		utils.Error(c, 409, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, utils.ErrQuoteNotCancelable):
		utils.Error(c, 409, "QUOTE_NOT_CANCELABLE", "Quote has already been dispatched or closed")
	case errors.Is(err, utils.ErrDefaultOffice):
		utils.Error(c, 409, "DEFAULT_OFFICE_REQUIRED", "Exactly one office must be the default")
	case errors.Is(err, utils.ErrDuplicateSerial):
		utils.Error(c, 409, "DUPLICATE_SERIAL_NUMBER", "A product with this serial number already exists")
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, utils.ErrInactiveUser):
		utils.Error(c, 403, "INACTIVE_USER", "Account is inactive")
	case isQuoteValidation(err):
		utils.Error(c, 400, "INVALID_QUOTE", err.Error())
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg(fallback)
		utils.Error(c, 500, "INTERNAL_ERROR", fallback)
	}
}

func isQuoteValidation(err error) bool {
	for _, target := range quoteValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
