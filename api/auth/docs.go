// Package auth contains the generated OpenAPI registration for the
// authentication service. Regenerate with `swag init` after changing the
// handler annotations.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Service Banner Endpoint",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Local Login Endpoint",
                "description": "Authenticates an email/password pair and issues an access/refresh token pair",
                "parameters": [
                    {
                        "description": "credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TokenPair"}},
                    "400": {"description": "malformed request body", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "401": {"description": "invalid credentials", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "503": {"description": "revocation store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/auth/reissue": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Token Reissue Endpoint",
                "description": "Exchanges a valid refresh token for a new access/refresh pair, invalidating the old refresh token",
                "parameters": [
                    {"type": "string", "description": "refresh token", "name": "Refresh", "in": "header"},
                    {
                        "description": "refresh token fallback",
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/http.ReissueRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TokenPair"}},
                    "400": {"description": "no refresh token supplied", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "401": {"description": "invalid, expired, or already-rotated refresh token", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "503": {"description": "revocation store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Logout Endpoint",
                "description": "Revokes the presented access and refresh tokens. Idempotent.",
                "parameters": [
                    {"type": "string", "description": "Bearer access token", "name": "Authorization", "in": "header"},
                    {"type": "string", "description": "refresh token", "name": "Refresh", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "tokens revoked"},
                    "503": {"description": "revocation store unavailable", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/auth/oauth2/{provider}": {
            "get": {
                "tags": ["Auth"],
                "summary": "Federated Login Redirect Endpoint",
                "description": "Starts a federated login by redirecting to the provider's authorization endpoint",
                "parameters": [
                    {"type": "string", "description": "provider name, e.g. google", "name": "provider", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "redirect to provider"},
                    "404": {"description": "unknown provider", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/auth/oauth2/callback/{provider}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Federated Login Callback Endpoint",
                "description": "Redeems the provider's authorization code, verifies the id_token, provisions the account on first login, and issues a token pair",
                "parameters": [
                    {"type": "string", "description": "provider name, e.g. google", "name": "provider", "in": "path", "required": true},
                    {"type": "string", "description": "authorization code", "name": "code", "in": "query", "required": true},
                    {"type": "string", "description": "state bound to the user agent", "name": "state", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TokenPair"}},
                    "401": {"description": "handshake failed", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "404": {"description": "unknown provider", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "409": {"description": "email already registered locally", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/members/join": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Members"],
                "summary": "Member Registration Endpoint",
                "description": "Registers a new local account with email, nickname, and password",
                "parameters": [
                    {
                        "description": "registration details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.JoinRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.MemberResponse"}},
                    "400": {"description": "validation failure", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "409": {"description": "email or nickname taken", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/members/email-check/{email}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Members"],
                "summary": "Email Availability Endpoint",
                "parameters": [
                    {"type": "string", "description": "email to check", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.AvailabilityResponse"}}
                }
            }
        },
        "/members/nickname-check/{nickname}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Members"],
                "summary": "Nickname Availability Endpoint",
                "parameters": [
                    {"type": "string", "description": "nickname to check", "name": "nickname", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.AvailabilityResponse"}}
                }
            }
        },
        "/members/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Members"],
                "summary": "Current Member Endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MemberResponse"}},
                    "401": {"description": "not authenticated", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/members": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Members"],
                "summary": "Member List Endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.MemberResponse"}}},
                    "401": {"description": "not authenticated", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}},
                    "403": {"description": "ADMIN role required", "schema": {"$ref": "#/definitions/httpx.ErrorBody"}}
                }
            }
        },
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "one or more dependencies degraded", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.TokenPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "http.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "http.ReissueRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "http.JoinRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "nickname": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "http.MemberResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "nickname": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "provider": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "http.AvailabilityResponse": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"}
            }
        },
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/http.HealthChecks"}
            }
        },
        "http.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "revocation": {"type": "string"},
                "signer": {"type": "string"}
            }
        },
        "httpx.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "JWT access token. Format: \"Bearer {token}\"."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "TableChat Authentication Service API",
	Description:      "Stateless authentication service issuing EdDSA-signed JWT access/refresh token pairs, with Redis-backed revocation and federated login via OpenID Connect providers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
