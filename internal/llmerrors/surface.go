package llmerrors

// Surface is the caller-visible JSON shape: {"error": {"type", "message",
// "upstream"?}}, per spec §6.6/§7.
type Surface struct {
	ErrorBody SurfaceBody `json:"error"`
}

type SurfaceBody struct {
	Type     string          `json:"type"`
	Message  string          `json:"message"`
	Upstream *UpstreamDetail `json:"upstream,omitempty"`
}

type UpstreamDetail struct {
	Status  int                 `json:"status"`
	Body    string              `json:"body"`
	Headers map[string][]string `json:"headers,omitempty"`
}

// ToSurface renders the error as the caller-visible JSON payload. Unknown
// errors (not *Error) are rendered as a generic transport error so the
// caller always sees exactly one shape.
func ToSurface(err error) Surface {
	e, ok := As(err)
	if !ok {
		return Surface{ErrorBody: SurfaceBody{Type: string(KindTransport), Message: err.Error()}}
	}

	body := SurfaceBody{Type: string(e.Kind), Message: e.Message}

	if e.Kind == KindProvider {
		body.Upstream = &UpstreamDetail{
			Status:  e.HTTPStatus,
			Body:    e.UpstreamBody,
			Headers: e.UpstreamHeaders,
		}
	}

	return Surface{ErrorBody: body}
}
