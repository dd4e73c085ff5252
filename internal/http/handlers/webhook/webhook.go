package webhook

import (
	"errors"
	"net/http"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	ratelimiter "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	handlecommand "remindbot/internal/core/services/handle_command"
	"remindbot/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Handler accepts Twilio's inbound message webhook: a form-encoded POST
// with the sender identity in "From" and the message text in "Body".
type Handler struct {
	log     logging.Logger
	service services.Service[handlecommand.Input, handlecommand.Result]
}

func New(
	log logging.Logger,
	service services.Service[handlecommand.Input, handlecommand.Result],
) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{log: log, service: service}
}

type Input struct {
	From string
	Body string
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.From, validation.Required, validation.Length(1, 64)),
		validation.Field(&i.Body, validation.Required, validation.Length(1, 2048)),
	)
}

type Result struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ReminderTime string `json:"reminder_time,omitempty"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	input := Input{
		From: r.PostFormValue("From"),
		Body: r.PostFormValue("Body"),
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		handlecommand.Input{
			Sender: reminder.Owner(input.From),
			Body:   input.Body,
		},
	)
	if err != nil {
		if errors.Is(err, ratelimiter.ErrRateLimitExceeded) {
			rateLimited := Result{
				Status:  handlecommand.StatusError.String(),
				Message: handlecommand.MsgTooManyRequests,
			}
			response.Render(rw, rateLimited, http.StatusTooManyRequests)
			return
		}
		logging.Error(r.Context(), h.log, err, logging.Entry("from", input.From))
		response.RenderInternalError(rw)
		return
	}

	res := Result{
		Status:  result.Status.String(),
		Message: result.Message,
	}
	if result.ReminderTime.IsPresent {
		res.ReminderTime = result.ReminderTime.Value.Format(handlecommand.TimeLayout)
	}
	response.Render(rw, res, http.StatusOK)
}
