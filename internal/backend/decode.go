package backend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// errorBody covers the two error shapes the backend produces:
// {"message": "..."} from handlers and {"detail": ...} from the framework.
type errorBody struct {
	Message string      `json:"message"`
	Detail  interface{} `json:"detail"`
}

// errorMessage extracts a human-readable message from an error response,
// falling back to the status text.
func errorMessage(resp *resty.Response) string {
	var body errorBody
	if err := sonic.Unmarshal(resp.Body(), &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if detail, ok := body.Detail.(string); ok && detail != "" {
			return detail
		}
	}

	if text := strings.TrimSpace(http.StatusText(resp.StatusCode())); text != "" {
		return text
	}
	return resp.Status()
}

// decode unmarshals a success body regardless of the declared content type
func decode(op string, resp *resty.Response, out interface{}) error {
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
