package providerhttp

import "bytes"

func newBodyReader(body []byte) *bytes.Reader {
	return bytes.NewReader(body)
}
