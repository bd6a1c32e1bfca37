package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PKDB Registry API",
        "description": "Role-gated registry for pharmacokinetic study datasets",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Account registration and token issuance"},
        {"name": "Datasets", "description": "Pharmacokinetic dataset records"},
        {"name": "Access Requests", "description": "Dataset access request workflow"},
        {"name": "Role Requests", "description": "Role upgrade request workflow"},
        {"name": "Audit", "description": "Per-dataset audit trail"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or duplicate email", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/token": {
            "post": {
                "tags": ["Auth"],
                "summary": "Issue access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets": {
            "get": {
                "tags": ["Datasets"],
                "summary": "List datasets",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Datasets"],
                "summary": "Create dataset",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DatasetCreate"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Viewer role cannot create datasets", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/{id}": {
            "get": {
                "tags": ["Datasets"],
                "summary": "Get dataset",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Datasets"],
                "summary": "Update dataset",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DatasetPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Locked or not owner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/{id}/lock": {
            "post": {
                "tags": ["Datasets"],
                "summary": "Lock dataset",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/{id}/unlock": {
            "post": {
                "tags": ["Datasets"],
                "summary": "Unlock dataset",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/{id}/requests": {
            "post": {
                "tags": ["Access Requests"],
                "summary": "File access request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AccessRequestCreate"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Access Requests"],
                "summary": "List access requests",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Viewer role cannot list requests", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/datasets/{id}/audit": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit trail",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Viewer role cannot view audit trail", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roles/requests": {
            "get": {
                "tags": ["Role Requests"],
                "summary": "List role upgrade requests",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Role Requests"],
                "summary": "File role upgrade request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoleUpgradeRequestCreate"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid requested role", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roles/requests/{id}/approve": {
            "post": {
                "tags": ["Role Requests"],
                "summary": "Approve role upgrade request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roles/requests/{id}/reject": {
            "post": {
                "tags": ["Role Requests"],
                "summary": "Reject role upgrade request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "researcher", "viewer"]}
            },
            "required": ["email", "password"]
        },
        "TokenRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "UserPublic": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "Dataset": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "drug_name": {"type": "string"},
                "study_id": {"type": "string"},
                "dataset_type": {"type": "string"},
                "metadata": {"type": "object"},
                "file_name": {"type": "string"},
                "owner_id": {"type": "string"},
                "locked": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "DatasetCreate": {
            "type": "object",
            "properties": {
                "drug_name": {"type": "string"},
                "study_id": {"type": "string"},
                "dataset_type": {"type": "string"},
                "metadata": {"type": "object"},
                "file_name": {"type": "string"}
            },
            "required": ["drug_name", "study_id", "dataset_type"]
        },
        "DatasetPatch": {
            "type": "object",
            "properties": {
                "drug_name": {"type": "string"},
                "study_id": {"type": "string"},
                "dataset_type": {"type": "string"},
                "metadata": {"type": "object"},
                "file_name": {"type": "string"}
            }
        },
        "AccessRequestCreate": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "AccessRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dataset_id": {"type": "string"},
                "requester_id": {"type": "string"},
                "reason": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "RoleUpgradeRequestCreate": {
            "type": "object",
            "properties": {
                "requested_role": {"type": "string", "enum": ["researcher", "viewer"]},
                "reason": {"type": "string"}
            },
            "required": ["requested_role", "reason"]
        },
        "RoleUpgradeRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "requester_id": {"type": "string"},
                "requested_role": {"type": "string"},
                "reason": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "AuditLogEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dataset_id": {"type": "string"},
                "actor_id": {"type": "string"},
                "action": {"type": "string"},
                "details": {"type": "object"},
                "created_at": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
