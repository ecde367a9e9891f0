package network

import "net/http"

type MockHttp struct {
	DoFunc func(req *http.Request) (int, []byte, error)
}

func (mock *MockHttp) Do(req *http.Request) (int, []byte, error) {
	if mock.DoFunc != nil {
		return mock.DoFunc(req)
	}

	return http.StatusOK, nil, nil
}
