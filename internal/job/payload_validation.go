package job

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/dto"
	"github.com/joshu-sajeev/notifyqueue/middleware"
)

var validate = validator.New()

// validatePayload decodes raw into the payload type registered for jobType
// and checks its validation tags.
func validatePayload(jobType config.JobType, raw []byte) error {
	payload, err := dto.DecodePayload(jobType, raw)
	if err != nil {
		return common.APIError{
			Status:  http.StatusBadRequest,
			Message: "invalid payload format",
		}
	}

	return validateStruct(payload)
}

func validateStruct(payload dto.Payload) error {
	if err := validate.Struct(payload); err != nil {
		return common.APIError{
			Status:  http.StatusBadRequest,
			Message: "payload validation failed",
			Fields:  middleware.FormatValidationErrors(err),
		}
	}
	return nil
}
