package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Booking Capacity API",
        "description": "Availability windows, slot capacity and booking lifecycle for service vendors",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Weekly availability windows and day schedules"},
        {"name": "Employees", "description": "Vendor staff management"},
        {"name": "Bookings", "description": "Booking lifecycle"},
        {"name": "Holds", "description": "Cart-side slot holds"},
        {"name": "Reports", "description": "Day-sheet report generation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/vendors/{vendorId}/availability-windows": {
            "get": {
                "tags": ["Availability"],
                "summary": "List a vendor's availability windows",
                "parameters": [
                    {"name": "vendorId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vendors/{vendorId}/time-slots": {
            "get": {
                "tags": ["Availability"],
                "summary": "List bookable slots with remaining capacity for a date",
                "parameters": [
                    {"name": "vendorId", "in": "path", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true, "description": "YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Vendor closed on this date"}
                }
            }
        },
        "/availability-windows": {
            "post": {
                "tags": ["Availability"],
                "summary": "Create an availability window",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WindowRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid interval or payload"}
                }
            }
        },
        "/availability-windows/{id}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get one availability window",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Update an availability window",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WindowRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Availability"],
                "summary": "Delete an availability window",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/vendors/{vendorId}/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "List a vendor's staff",
                "parameters": [
                    {"name": "vendorId", "in": "path", "type": "string", "required": true},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees": {
            "post": {
                "tags": ["Employees"],
                "summary": "Add a staff member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EmployeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already in use"}
                }
            }
        },
        "/employees/{id}": {
            "get": {
                "tags": ["Employees"],
                "summary": "Get one employee",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Employees"],
                "summary": "Update a staff member",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EmployeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Employees"],
                "summary": "Remove a staff member",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"name": "vendorId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "confirmed", "completed", "cancelled"]},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot full"},
                    "422": {"description": "Vendor closed"},
                    "503": {"description": "Slot contended, retry"}
                }
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Get booking detail",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/bookings/{id}/status": {
            "patch": {
                "tags": ["Bookings"],
                "summary": "Move a booking through its lifecycle",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/bookings/{id}/cancel": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Cancel a booking",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Booking already terminal"}
                }
            }
        },
        "/bookings/{id}/reschedule": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Move a booking to a new slot",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "New slot full"}
                }
            }
        },
        "/holds": {
            "post": {
                "tags": ["Holds"],
                "summary": "Pin a slot for a cart line",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot full"}
                }
            }
        },
        "/holds/{id}": {
            "get": {
                "tags": ["Holds"],
                "summary": "Get one hold",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Holds"],
                "summary": "Release a hold's slot claim",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Released"}
                }
            }
        },
        "/holds/{id}/convert": {
            "post": {
                "tags": ["Holds"],
                "summary": "Convert a hold into a confirmed booking at checkout",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConvertHoldRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "409": {"description": "Hold no longer active"},
                    "410": {"description": "Hold expired"}
                }
            }
        },
        "/order-lines/{orderLineId}/booking": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Look up the booking tied to an order line",
                "parameters": [
                    {"name": "orderLineId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a day-sheet report",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DaySheetRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Invalid or expired token"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get a report job's status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "WindowRequest": {
            "type": "object",
            "required": ["vendor_id", "day_of_week", "start_minute", "end_minute", "slot_duration_minutes", "employee_count"],
            "properties": {
                "vendor_id": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "start_minute": {"type": "integer", "minimum": 0, "maximum": 1439},
                "end_minute": {"type": "integer", "minimum": 1, "maximum": 1440},
                "slot_duration_minutes": {"type": "integer", "minimum": 1},
                "employee_count": {"type": "integer", "minimum": 1}
            }
        },
        "EmployeeRequest": {
            "type": "object",
            "required": ["vendor_id", "name"],
            "properties": {
                "vendor_id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["vendor_id", "product_id", "date", "start_time"],
            "properties": {
                "vendor_id": {"type": "string"},
                "product_id": {"type": "string"},
                "date": {"type": "string", "example": "2026-03-02"},
                "start_time": {"type": "string", "example": "09:00 AM"},
                "order_line_id": {"type": "string"},
                "employee_id": {"type": "string"},
                "customer_name": {"type": "string"},
                "customer_email": {"type": "string"},
                "customer_phone": {"type": "string"}
            }
        },
        "RescheduleRequest": {
            "type": "object",
            "required": ["date", "start_time"],
            "properties": {
                "date": {"type": "string", "example": "2026-03-09"},
                "start_time": {"type": "string", "example": "11:00 AM"}
            }
        },
        "SelectSlotRequest": {
            "type": "object",
            "required": ["cart_id", "vendor_id", "product_id", "date", "start_time"],
            "properties": {
                "cart_id": {"type": "string"},
                "vendor_id": {"type": "string"},
                "product_id": {"type": "string"},
                "date": {"type": "string", "example": "2026-03-02"},
                "start_time": {"type": "string", "example": "09:00 AM"}
            }
        },
        "ConvertHoldRequest": {
            "type": "object",
            "required": ["order_line_id"],
            "properties": {
                "order_line_id": {"type": "string"},
                "employee_id": {"type": "string"},
                "customer": {"$ref": "#/definitions/CustomerContact"}
            }
        },
        "CustomerContact": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "DaySheetRequest": {
            "type": "object",
            "required": ["vendor_id", "date", "format"],
            "properties": {
                "vendor_id": {"type": "string"},
                "date": {"type": "string", "example": "2026-03-02"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "StatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "confirmed", "completed", "cancelled"]}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
