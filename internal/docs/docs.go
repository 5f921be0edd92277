// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "User registered", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Logged in", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/token": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "OAuth2 password grant",
                "parameters": [
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Access token", "schema": {"$ref": "#/definitions/handlers.TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "Current user", "schema": {"$ref": "#/definitions/handlers.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{user_id}/accounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "skip", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Accounts"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create an account",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Account created", "schema": {"$ref": "#/definitions/models.Account"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{user_id}/accounts/{account_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "account_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Account", "schema": {"$ref": "#/definitions/models.Account"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Rename an account",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "account_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "Account", "schema": {"$ref": "#/definitions/models.Account"}},
                    "400": {"description": "Balance is not editable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Delete an account",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "account_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "409": {"description": "Account has transactions", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{user_id}/accounts/{account_id}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List an account's transactions",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "account_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Transactions"}}
            }
        },
        "/users/{user_id}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List transactions",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "string", "name": "start_date", "in": "query"},
                    {"type": "string", "name": "end_date", "in": "query"},
                    {"type": "string", "enum": ["income", "expense"], "name": "transaction_type", "in": "query"},
                    {"type": "integer", "name": "category_id", "in": "query"},
                    {"type": "integer", "name": "account_id", "in": "query"},
                    {"type": "string", "enum": ["date", "amount"], "name": "sort_by", "in": "query"},
                    {"type": "string", "enum": ["asc", "desc"], "name": "order", "in": "query"}
                ],
                "responses": {"200": {"description": "Transactions"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Record a transaction",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateTransactionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Transaction created", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "400": {"description": "Invalid input or incompatible category", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Consistency conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/{user_id}/transactions/{transaction_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get a transaction",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "transaction_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Transaction", "schema": {"$ref": "#/definitions/models.Transaction"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Update a transaction",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "transaction_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateTransactionRequest"}}
                ],
                "responses": {"200": {"description": "Transaction", "schema": {"$ref": "#/definitions/models.Transaction"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Delete a transaction",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "transaction_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}}}
            }
        },
        "/users/{user_id}/budgets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "List budgets with status",
                "parameters": [{"type": "integer", "name": "user_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Budgets"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Create a budget",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateBudgetRequest"}}
                ],
                "responses": {"201": {"description": "Budget created", "schema": {"$ref": "#/definitions/models.Budget"}}}
            }
        },
        "/users/{user_id}/budgets/{budget_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Get a budget with status",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "budget_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Budget with status"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Update a budget",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "budget_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateBudgetRequest"}}
                ],
                "responses": {"200": {"description": "Budget", "schema": {"$ref": "#/definitions/models.Budget"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Delete a budget",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "name": "budget_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}}}
            }
        },
        "/users/{user_id}/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["summary"],
                "summary": "Dashboard summary",
                "parameters": [{"type": "integer", "name": "user_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Summary"}}
            }
        },
        "/categories": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories",
                "parameters": [{"type": "string", "enum": ["income", "expense", "both"], "name": "type", "in": "query"}],
                "responses": {"200": {"description": "Categories"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Create a category",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateCategoryRequest"}}],
                "responses": {"201": {"description": "Category created", "schema": {"$ref": "#/definitions/models.Category"}}}
            }
        },
        "/categories/{category_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Get a category",
                "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Category", "schema": {"$ref": "#/definitions/models.Category"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Update a category",
                "parameters": [
                    {"type": "integer", "name": "category_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateCategoryRequest"}}
                ],
                "responses": {"200": {"description": "Category", "schema": {"$ref": "#/definitions/models.Category"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Delete a category",
                "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}}}
            }
        },
        "/admin/reconcile": {
            "get": {
                "security": [{"AdminAPIKey": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Reconcile account balances",
                "parameters": [{"type": "boolean", "name": "fix", "in": "query"}],
                "responses": {"200": {"description": "Reconciliation report", "schema": {"$ref": "#/definitions/ledger.ReconcileReport"}}}
            }
        }
    },
    "definitions": {
        "handlers.ErrorDetail": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/handlers.ErrorDetail"}}
        },
        "handlers.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handlers.RegisterRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string", "minLength": 8}}
        },
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.UserResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "username": {"type": "string"}}
        },
        "handlers.AuthResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/handlers.UserResponse"}}
        },
        "handlers.TokenResponse": {
            "type": "object",
            "properties": {"access_token": {"type": "string"}, "token_type": {"type": "string"}}
        },
        "handlers.CreateAccountRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "balance": {"type": "number"}}
        },
        "handlers.UpdateAccountRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "handlers.CreateCategoryRequest": {
            "type": "object",
            "required": ["name", "type"],
            "properties": {"name": {"type": "string"}, "type": {"type": "string", "enum": ["income", "expense", "both"]}}
        },
        "handlers.UpdateCategoryRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "type": {"type": "string", "enum": ["income", "expense", "both"]}}
        },
        "handlers.CreateTransactionRequest": {
            "type": "object",
            "required": ["account_id", "type", "amount"],
            "properties": {
                "account_id": {"type": "integer"},
                "category_id": {"type": "integer"},
                "type": {"type": "string", "enum": ["income", "expense"]},
                "amount": {"type": "number"},
                "description": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "handlers.UpdateTransactionRequest": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "category_id": {"type": "integer"},
                "type": {"type": "string", "enum": ["income", "expense"]},
                "amount": {"type": "number"},
                "description": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "handlers.CreateBudgetRequest": {
            "type": "object",
            "required": ["category_id", "amount", "period"],
            "properties": {
                "category_id": {"type": "integer"},
                "amount": {"type": "number"},
                "period": {"type": "string", "enum": ["weekly", "monthly", "yearly"]}
            }
        },
        "handlers.UpdateBudgetRequest": {
            "type": "object",
            "properties": {
                "category_id": {"type": "integer"},
                "amount": {"type": "number"},
                "period": {"type": "string", "enum": ["weekly", "monthly", "yearly"]}
            }
        },
        "models.Account": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "owner_id": {"type": "integer"},
                "name": {"type": "string"},
                "balance": {"type": "number"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.Category": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["income", "expense", "both"]}
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "account_id": {"type": "integer"},
                "category_id": {"type": "integer"},
                "type": {"type": "string", "enum": ["income", "expense"]},
                "amount": {"type": "number"},
                "description": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "models.Budget": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "category_id": {"type": "integer"},
                "amount": {"type": "number"},
                "period": {"type": "string", "enum": ["weekly", "monthly", "yearly"]},
                "category": {"$ref": "#/definitions/models.Category"}
            }
        },
        "ledger.Drift": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "name": {"type": "string"},
                "recorded": {"type": "number"},
                "expected": {"type": "number"},
                "difference": {"type": "number"},
                "fixed": {"type": "boolean"}
            }
        },
        "ledger.ReconcileReport": {
            "type": "object",
            "properties": {
                "accounts_checked": {"type": "integer"},
                "drifts": {"type": "array", "items": {"$ref": "#/definitions/ledger.Drift"}}
            }
        }
    },
    "securityDefinitions": {
        "AdminAPIKey": {"type": "apiKey", "name": "X-API-Key", "in": "header"},
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Fintrack API",
	Description:      "Fintrack keeps account balances consistent with the transactions recorded against them and tracks spending against budgets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
