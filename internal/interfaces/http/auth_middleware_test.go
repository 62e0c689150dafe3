package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Costeo-api/internal/application/auth"
	apphttp "github.com/jhoicas/Costeo-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Costeo-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "costeo-api-test"
	testExpMin    = 60
	testUser      = "operador"
	testPassword  = "clave-segura-123"
)

// buildProtectedApp construye una app Fiber con el middleware de auth y un
// handler dummy que devuelve 200 si el token es válido.
func buildProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"user": apphttp.GetUserID(c),
			})
		},
	)
	return app
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUser, "operador", testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doProtectedRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenValidoPasa(t *testing.T) {
	app := buildProtectedApp()
	resp := doProtectedRequest(t, app, validToken(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "un token válido debe pasar el middleware")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, testUser, body["user"], "el middleware debe dejar el user_id en locals")
}

func TestAuthMiddleware_SinHeaderRechaza(t *testing.T) {
	app := buildProtectedApp()
	resp := doProtectedRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "sin Authorization debe ser 401")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoInvalidoRechaza(t *testing.T) {
	app := buildProtectedApp()
	resp := doProtectedRequest(t, app, "Token abcdef")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "esquema distinto de Bearer debe ser 401")
}

func TestAuthMiddleware_FirmaIncorrectaRechaza(t *testing.T) {
	otro, err := pkgjwt.Generate("otro-secret", testUser, "operador", testIssuer, testExpMin)
	require.NoError(t, err)

	app := buildProtectedApp()
	resp := doProtectedRequest(t, app, "Bearer "+otro)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "un token firmado con otro secret debe ser 401")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests login
// ──────────────────────────────────────────────────────────────────────────────

func buildLoginApp(t *testing.T, passwordHash string) *fiber.App {
	t.Helper()
	uc := auth.NewAuthUseCase(testUser, passwordHash, auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: testExpMin,
		Issuer:     testIssuer,
	})
	app := fiber.New()
	app.Post("/api/auth/login", apphttp.NewAuthHandler(uc).Login)
	return app
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func doLogin(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLogin_CredencialesCorrectasDevuelveToken(t *testing.T) {
	app := buildLoginApp(t, hashFor(t, testPassword))
	resp := doLogin(t, app, testUser, testPassword)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "credenciales correctas deben dar 200")

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["token"], "la respuesta debe traer el token")

	user, role, err := pkgjwt.Parse(testJWTSecret, body["token"])
	require.NoError(t, err, "el token emitido debe ser verificable")
	assert.Equal(t, testUser, user)
	assert.Equal(t, "operador", role)
}

func TestLogin_PasswordIncorrectoRechaza(t *testing.T) {
	app := buildLoginApp(t, hashFor(t, testPassword))
	resp := doLogin(t, app, testUser, "otra-clave")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "password incorrecto debe ser 401")
}

func TestLogin_UsuarioIncorrectoRechaza(t *testing.T) {
	app := buildLoginApp(t, hashFor(t, testPassword))
	resp := doLogin(t, app, "intruso", testPassword)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "usuario desconocido debe ser 401")
}

func TestLogin_SinHashConfiguradoDeshabilitado(t *testing.T) {
	app := buildLoginApp(t, "")
	resp := doLogin(t, app, testUser, testPassword)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "sin hash configurado el login queda deshabilitado")
}

func TestLogin_CamposVaciosValidacion(t *testing.T) {
	app := buildLoginApp(t, hashFor(t, testPassword))
	resp := doLogin(t, app, "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "campos vacíos deben ser 400")
}
