// Package docs registers the Swagger document served under /swagger.
// Regenerate with `swag init` after changing handler annotations.
package docs

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
                "tags": ["home"],
                "summary": "Home feed",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HomeFeedResponse"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "API is healthy"}}
            }
        },
        "/flash": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Pending flash messages",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FlashResponse"}}}
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "tags": ["accounts"],
                "summary": "Log in with email and password",
                "parameters": [{"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}],
                "responses": {"302": {"description": "Redirect to the remembered page or /"}}
            }
        },
        "/logout": {
            "post": {
                "tags": ["accounts"],
                "summary": "Log out",
                "responses": {"302": {"description": "Redirect to /"}}
            }
        },
        "/signup": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "tags": ["accounts"],
                "summary": "Create a local account",
                "parameters": [{"in": "body", "name": "account", "required": true, "schema": {"$ref": "#/definitions/dto.SignupRequest"}}],
                "responses": {"302": {"description": "Redirect to /"}}
            }
        },
        "/account": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "401": {"description": "Authentication required"}
                }
            }
        },
        "/account/type": {
            "post": {
                "tags": ["accounts"],
                "summary": "Change account type",
                "parameters": [{"in": "body", "name": "type", "required": true, "schema": {"$ref": "#/definitions/dto.AccountTypeRequest"}}],
                "responses": {"302": {"description": "Redirect to /account"}}
            }
        },
        "/account/profile": {
            "post": {
                "tags": ["accounts"],
                "summary": "Update profile",
                "parameters": [{"in": "body", "name": "profile", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateProfileRequest"}}],
                "responses": {"302": {"description": "Redirect to /account"}}
            }
        },
        "/account/password": {
            "post": {
                "tags": ["accounts"],
                "summary": "Change password",
                "parameters": [{"in": "body", "name": "password", "required": true, "schema": {"$ref": "#/definitions/dto.ChangePasswordRequest"}}],
                "responses": {"302": {"description": "Redirect to /account"}}
            }
        },
        "/account/delete": {
            "post": {
                "tags": ["accounts"],
                "summary": "Delete account",
                "responses": {"302": {"description": "Redirect to /"}}
            }
        },
        "/account/unlink/{provider}": {
            "get": {
                "tags": ["accounts"],
                "summary": "Unlink a login provider",
                "parameters": [{"type": "string", "in": "path", "name": "provider", "required": true, "description": "facebook, google or github"}],
                "responses": {"302": {"description": "Redirect to /account"}}
            }
        },
        "/forgot": {
            "post": {
                "tags": ["password-reset"],
                "summary": "Request a password reset link",
                "parameters": [{"in": "body", "name": "email", "required": true, "schema": {"$ref": "#/definitions/dto.ForgotPasswordRequest"}}],
                "responses": {"302": {"description": "Redirect to /forgot"}}
            }
        },
        "/reset/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["password-reset"],
                "summary": "Check a password reset token",
                "parameters": [{"type": "string", "in": "path", "name": "token", "required": true}],
                "responses": {"200": {"description": "Token is redeemable"}, "302": {"description": "Redirect to /forgot"}}
            },
            "post": {
                "tags": ["password-reset"],
                "summary": "Set a new password with a reset token",
                "parameters": [
                    {"type": "string", "in": "path", "name": "token", "required": true},
                    {"in": "body", "name": "password", "required": true, "schema": {"$ref": "#/definitions/dto.ResetPasswordRequest"}}
                ],
                "responses": {"302": {"description": "Redirect to /"}}
            }
        },
        "/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List job postings",
                "parameters": [
                    {"type": "integer", "default": 10, "in": "query", "name": "limit"},
                    {"type": "integer", "default": 0, "in": "query", "name": "offset"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.JobResponse"}}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Create a new job posting",
                "parameters": [{"in": "body", "name": "job", "required": true, "schema": {"$ref": "#/definitions/dto.CreateJobRequest"}}],
                "responses": {
                    "201": {"description": "Job created successfully", "schema": {"$ref": "#/definitions/dto.JobResponse"}},
                    "403": {"description": "Not a recruiter"}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get a job posting",
                "parameters": [{"type": "string", "format": "uuid", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JobResponse"}}, "404": {"description": "Job not found"}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Update a job posting",
                "parameters": [
                    {"type": "string", "format": "uuid", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "job", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateJobRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JobResponse"}}, "403": {"description": "Not allowed to manage this job"}}
            }
        },
        "/jobs/{id}/delete": {
            "post": {
                "tags": ["jobs"],
                "summary": "Delete a job posting",
                "parameters": [{"type": "string", "format": "uuid", "in": "path", "name": "id", "required": true}],
                "responses": {"204": {"description": "Job deleted"}, "403": {"description": "Not the owner"}}
            }
        },
        "/jobs/{id}/apply": {
            "post": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Apply to a job posting",
                "parameters": [{"type": "string", "format": "uuid", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JobResponse"}}, "409": {"description": "Already applied"}}
            }
        }
    },
    "definitions": {
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "dto.SignupRequest": {
            "type": "object",
            "required": ["email", "password", "confirmPassword", "type"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 4, "maxLength": 72},
                "confirmPassword": {"type": "string"},
                "type": {"type": "string", "enum": ["applicant", "recruiter"]},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "dto.AccountTypeRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {"type": {"type": "string", "enum": ["applicant", "recruiter"]}}
        },
        "dto.UpdateProfileRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "gender": {"type": "string"},
                "location": {"type": "string"},
                "website": {"type": "string"},
                "major": {"type": "string"},
                "graduationYear": {"type": "integer"},
                "degree": {"type": "string"},
                "school": {"type": "string"},
                "resumeUrl": {"type": "string"},
                "organization": {"type": "string"},
                "title": {"type": "string"},
                "skills": {"type": "string"},
                "interests": {"type": "string"}
            }
        },
        "dto.ChangePasswordRequest": {
            "type": "object",
            "required": ["password", "confirmPassword"],
            "properties": {"password": {"type": "string", "minLength": 4}, "confirmPassword": {"type": "string"}}
        },
        "dto.ForgotPasswordRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {"email": {"type": "string"}}
        },
        "dto.ResetPasswordRequest": {
            "type": "object",
            "required": ["password", "confirmPassword"],
            "properties": {"password": {"type": "string", "minLength": 4}, "confirmPassword": {"type": "string"}}
        },
        "dto.AccountResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "profile": {"type": "object"},
                "roleProfile": {"type": "object"},
                "providers": {"type": "array", "items": {"type": "string"}},
                "hasPassword": {"type": "boolean"},
                "gravatar": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "dto.FlashResponse": {
            "type": "object",
            "properties": {"messages": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}}
        },
        "dto.CreateJobRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string", "maxLength": 140},
                "location": {"type": "string"},
                "company": {"type": "string"},
                "skills": {"type": "string"}
            }
        },
        "dto.UpdateJobRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string", "maxLength": 140},
                "location": {"type": "string"},
                "company": {"type": "string"},
                "skills": {"type": "string"}
            }
        },
        "dto.JobResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "company": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "owner": {"type": "object"},
                "recruiters": {"type": "array", "items": {"type": "string"}},
                "applicants": {"type": "array", "items": {"type": "object"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "dto.HomeFeedResponse": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "jobs": {"type": "array", "items": {"$ref": "#/definitions/dto.JobResponse"}},
                "applicants": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Job Board API",
	Description:      "Accounts, password reset and job postings for the job board.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
