package attrshare_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/liviudnicoara/attrshare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	server   *httptest.Server
	baseURL  string
	requests atomic.Int64
)

type TestResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type EchoResponse struct {
	Method        string `json:"method"`
	Authorization string `json:"authorization"`
	HasAuth       bool   `json:"hasAuth"`
	ContentType   string `json:"contentType"`
	Body          string `json:"body"`
	Query         string `json:"query"`
}

func TestMain(m *testing.M) {
	fmt.Println("mocking server")
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch strings.TrimPrefix(r.URL.Path, "/api") {
		case "/ok":
			writeEnvelope(w, 0, "success", TestResponse{ID: 1, Name: "mock"})
		case "/warn":
			writeEnvelope(w, 2, "accepted with warning", TestResponse{ID: 2, Name: "mock"})
		case "/fail":
			writeEnvelope(w, 1001, "custom endpoint error", nil)
		case "/fail-nomsg":
			writeEnvelope(w, 7, "", nil)
		case "/plain":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("hello"))
		case "/binary":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte(`{"code":1001,"msg":"not an envelope","data":null}`))
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
		case "/server-error":
			w.WriteHeader(http.StatusInternalServerError)
		case "/bad-gateway":
			w.WriteHeader(http.StatusBadGateway)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			writeEnvelope(w, 0, "success", TestResponse{ID: 1, Name: "mock"})
		case "/echo":
			mockEchoEndpoint(w, r)
		default:
			http.NotFoundHandler().ServeHTTP(w, r)
		}
	}))
	baseURL = server.URL + "/api"

	fmt.Println("run tests")
	m.Run()
}

func writeEnvelope(w http.ResponseWriter, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": msg, "data": data})
}

func mockEchoEndpoint(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	_, hasAuth := r.Header["Authorization"]
	writeEnvelope(w, 0, "success", EchoResponse{
		Method:        r.Method,
		Authorization: r.Header.Get("Authorization"),
		HasAuth:       hasAuth,
		ContentType:   r.Header.Get("Content-Type"),
		Body:          string(body),
		Query:         r.URL.RawQuery,
	})
}

type recorder struct {
	mu      sync.Mutex
	notices []string
	routes  []string
}

func (r *recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, message)
}

func (r *recorder) NavigateTo(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, path)
}

func newExecutor(rec *recorder) *attrshare.RequestExecutor {
	return attrshare.NewDefaultRequestExecutor(baseURL).
		WithNotifier(rec).
		WithNavigator(rec)
}

func Test_Envelope(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		req := attrshare.Get[TestResponse](newExecutor(rec), "/ok")

		// act
		resp, err := req.Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Code)
		assert.Equal(t, "success", resp.Msg)
		assert.Equal(t, 1, resp.Data.ID)
		assert.Equal(t, "mock", resp.Data.Name)
		assert.Empty(t, rec.notices)
	})

	t.Run("WarningCodeInDefaultSuccessSet", func(t *testing.T) {
		// arrange
		rec := &recorder{}

		// act
		resp, err := attrshare.Get[TestResponse](newExecutor(rec), "/warn").Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Code)
		assert.Equal(t, 2, resp.Data.ID)
		assert.Empty(t, rec.notices)
	})

	t.Run("WarningCodeOutsideConfiguredSuccessSet", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		re := newExecutor(rec).WithSuccessCodes(0)

		// act
		resp, err := attrshare.Get[TestResponse](re, "/warn").Do(context.Background())

		// assert
		assert.Nil(t, resp)
		env, ok := attrshare.EnvelopeOf(err)
		require.True(t, ok)
		assert.Equal(t, 2, env.Code)
		assert.Equal(t, []string{"accepted with warning"}, rec.notices)
	})

	t.Run("Error", func(t *testing.T) {
		// arrange
		rec := &recorder{}

		// act
		resp, err := attrshare.Get[TestResponse](newExecutor(rec), "/fail").Do(context.Background())

		// assert
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "custom endpoint error")
		env, ok := attrshare.EnvelopeOf(err)
		require.True(t, ok)
		assert.Equal(t, 1001, env.Code)
		assert.Equal(t, []string{"custom endpoint error"}, rec.notices)
		assert.Empty(t, rec.routes)
	})

	t.Run("ErrorWithoutMessageUsesFallback", func(t *testing.T) {
		// arrange
		rec := &recorder{}

		// act
		_, err := attrshare.Get[TestResponse](newExecutor(rec), "/fail-nomsg").Do(context.Background())

		// assert
		require.Error(t, err)
		assert.Equal(t, []string{attrshare.DefaultMessages().Fallback}, rec.notices)
	})

	t.Run("NotAnEnvelope", func(t *testing.T) {
		// arrange
		rec := &recorder{}

		// act
		_, err := attrshare.Get[TestResponse](newExecutor(rec), "/plain").Do(context.Background())

		// assert
		var envErr *attrshare.EnvelopeError
		require.True(t, errors.As(err, &envErr))
		assert.True(t, envErr.Malformed)
		assert.Equal(t, []string{attrshare.DefaultMessages().Fallback}, rec.notices)
	})
}

func Test_Binary(t *testing.T) {
	t.Run("PayloadIsNotParsed", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		re := newExecutor(rec)

		// act
		data, err := re.Fetch(context.Background(), attrshare.Descriptor{Method: http.MethodGet, Path: "/binary"})

		// assert
		require.NoError(t, err)
		assert.Equal(t, `{"code":1001,"msg":"not an envelope","data":null}`, string(data))
		assert.Empty(t, rec.notices)
	})

	t.Run("StatusFailureStillClassified", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		re := newExecutor(rec)

		// act
		data, err := re.Fetch(context.Background(), attrshare.Descriptor{Method: http.MethodGet, Path: "/missing"})

		// assert
		assert.Nil(t, data)
		class, ok := attrshare.ClassOf(err)
		require.True(t, ok)
		assert.Equal(t, attrshare.ClassHTTPStatus, class)
		assert.Equal(t, []string{"service error: 404"}, rec.notices)
	})
}

func Test_TransportFailures(t *testing.T) {
	t.Run("Unauthenticated", func(t *testing.T) {
		// arrange
		rec := &recorder{}

		// act
		_, err := attrshare.Get[TestResponse](newExecutor(rec), "/unauthorized").Do(context.Background())

		// assert
		var te *attrshare.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, attrshare.ClassUnauthenticated, te.Class)
		assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
		assert.True(t, attrshare.IsUnauthenticated(err))
		assert.Equal(t, []string{"please log in"}, rec.notices)
		assert.Equal(t, []string{"/"}, rec.routes)
	})

	t.Run("UnauthenticatedCustomLoginRoute", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		re := newExecutor(rec).WithLoginRoute("/login")

		// act
		_, err := attrshare.Get[TestResponse](re, "/unauthorized").Do(context.Background())

		// assert
		require.Error(t, err)
		assert.Equal(t, []string{"/login"}, rec.routes)
	})

	t.Run("ServerErrorIsSilent", func(t *testing.T) {
		// arrange
		rec := &recorder{}

		// act
		_, err := attrshare.Get[TestResponse](newExecutor(rec), "/server-error").Do(context.Background())

		// assert
		class, ok := attrshare.ClassOf(err)
		require.True(t, ok)
		assert.Equal(t, attrshare.ClassServerError, class)
		assert.Empty(t, rec.notices)
		assert.Empty(t, rec.routes)
	})

	t.Run("OtherStatus", func(t *testing.T) {
		// arrange
		rec := &recorder{}

		// act
		_, err := attrshare.Get[TestResponse](newExecutor(rec), "/bad-gateway").Do(context.Background())

		// assert
		var te *attrshare.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, attrshare.ClassHTTPStatus, te.Class)
		assert.Equal(t, http.StatusBadGateway, te.StatusCode)
		assert.Equal(t, []string{"service error: 502"}, rec.notices)
	})

	t.Run("ExecutorTimeout", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		re := newExecutor(rec).WithTimeout(50 * time.Millisecond)

		// act
		resp, err := attrshare.Get[TestResponse](re, "/slow").Do(context.Background())

		// assert
		assert.Nil(t, resp)
		class, ok := attrshare.ClassOf(err)
		require.True(t, ok)
		assert.Equal(t, attrshare.ClassTimeout, class)
		assert.Equal(t, []string{attrshare.DefaultMessages().Timeout}, rec.notices)
	})

	t.Run("PerCallTimeoutOverridesDefault", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		re := newExecutor(rec).WithTimeout(50 * time.Millisecond)

		// act
		resp, err := attrshare.Get[TestResponse](re, "/slow").
			WithTimeout(2 * time.Second).
			Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Data.ID)
		assert.Empty(t, rec.notices)
	})

	t.Run("NetworkUnreachable", func(t *testing.T) {
		// arrange
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()
		rec := &recorder{}
		re := attrshare.NewDefaultRequestExecutor(closed.URL + "/api").
			WithNotifier(rec).
			WithNavigator(rec)

		// act
		_, err := attrshare.Get[TestResponse](re, "/ok").Do(context.Background())

		// assert
		var te *attrshare.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, attrshare.ClassNetwork, te.Class)
		assert.Zero(t, te.StatusCode)
		assert.Equal(t, []string{attrshare.DefaultMessages().Network}, rec.notices)
		assert.Empty(t, rec.routes)
	})
}

func Test_Authorization(t *testing.T) {
	t.Run("CredentialAttached", func(t *testing.T) {
		// arrange
		re := newExecutor(&recorder{}).WithTokenSource(attrshare.TokenFunc(func() (string, error) {
			return "token-123", nil
		}))

		// act
		resp, err := attrshare.Get[EchoResponse](re, "/echo").Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.Equal(t, "token-123", resp.Data.Authorization)
	})

	t.Run("NoCredential", func(t *testing.T) {
		// arrange
		re := newExecutor(&recorder{}).WithTokenSource(attrshare.TokenFunc(func() (string, error) {
			return "", nil
		}))

		// act
		resp, err := attrshare.Get[EchoResponse](re, "/echo").Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.False(t, resp.Data.HasAuth)
	})

	t.Run("TokenReadFailureStopsDispatch", func(t *testing.T) {
		// arrange
		rec := &recorder{}
		re := newExecutor(rec).WithTokenSource(attrshare.TokenFunc(func() (string, error) {
			return "", errors.New("token store locked")
		}))
		before := requests.Load()

		// act
		resp, err := attrshare.Get[EchoResponse](re, "/echo").Do(context.Background())

		// assert
		assert.Nil(t, resp)
		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich))
		assert.Equal(t, goerrors.CategoryAuth, rich.Category)
		assert.Equal(t, before, requests.Load())
		assert.Empty(t, rec.notices)
		assert.Empty(t, rec.routes)
	})
}

func Test_Bodies(t *testing.T) {
	t.Run("FormKeepsInsertionOrder", func(t *testing.T) {
		// arrange
		form := attrshare.Form{}.Add("username", "a").Add("password", "b")

		// act
		resp, err := attrshare.Post[EchoResponse](newExecutor(&recorder{}), "/echo", form).Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.Equal(t, "username=a&password=b", resp.Data.Body)
		assert.Equal(t, "application/x-www-form-urlencoded", resp.Data.ContentType)
	})

	t.Run("JSON", func(t *testing.T) {
		// arrange
		payload := map[string]string{"username": "a"}

		// act
		resp, err := attrshare.Put[EchoResponse](newExecutor(&recorder{}), "/echo", payload).Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, resp.Data.Method)
		assert.JSONEq(t, `{"username":"a"}`, resp.Data.Body)
		assert.Equal(t, "application/json", resp.Data.ContentType)
	})

	t.Run("QueryWithEmptyBody", func(t *testing.T) {
		// act
		resp, err := attrshare.Post[EchoResponse](newExecutor(&recorder{}), "/echo", nil).
			WithQueryParameters(map[string]string{"userId": "7"}).
			Do(context.Background())

		// assert
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, resp.Data.Method)
		assert.Equal(t, "userId=7", resp.Data.Query)
		assert.Empty(t, resp.Data.Body)
	})
}

func Test_InvalidBaseURL(t *testing.T) {
	// arrange
	rec := &recorder{}
	re := attrshare.NewDefaultRequestExecutor("not a url").WithNotifier(rec)

	// act
	_, err := attrshare.Get[TestResponse](re, "/ok").Do(context.Background())

	// assert
	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, goerrors.CategoryBadInput, rich.Category)
	assert.Empty(t, rec.notices)
}
