package api

// toolSchema describes one tool in the tools/list response
type toolSchema struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

// Tool names accepted by tools/call
const (
	toolExtractInboundOrders = "extract_inbound_orders"
	toolAddToArcadia         = "add_to_arcadia"
	toolCreateArcadiaOrder   = "create_arcadia_order"
	toolRunFullPipeline      = "run_full_pipeline"
)

func toolSchemas() []toolSchema {
	return []toolSchema{
		{
			Name: toolExtractInboundOrders,
			Description: "Read the most recent inbound shipment email from the mailbox " +
				"and extract structured order data (master bill numbers, product codes, " +
				"quantities, temperatures). Does not touch Arcadia.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
		{
			Name: toolAddToArcadia,
			Description: "Submit previously extracted order data to Arcadia. Each product " +
				"line becomes one Arcadia order entry; failures on one product do not stop " +
				"the rest of the batch.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"order_data": map[string]any{
						"type":        "object",
						"description": "Extraction result as returned by extract_inbound_orders",
						"properties": map[string]any{
							"email_subject": map[string]any{"type": "string"},
							"orders": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"master_bill_number":        map[string]any{"type": "string"},
										"supplying_facility_number": map[string]any{"type": "string"},
										"date":                      map[string]any{"type": "string"},
										"delivery_company":          map[string]any{"type": "string"},
										"comments":                  map[string]any{"type": "string"},
										"products": map[string]any{
											"type": "array",
											"items": map[string]any{
												"type": "object",
												"properties": map[string]any{
													"product_code": map[string]any{"type": "string"},
													"quantity":     map[string]any{"type": "integer"},
													"temperature":  map[string]any{"type": "string"},
												},
												"required": []string{"product_code", "quantity"},
											},
										},
									},
									"required": []string{"master_bill_number", "products"},
								},
							},
						},
						"required": []string{"orders"},
					},
				},
				"required": []string{"order_data"},
			},
		},
		{
			Name: toolCreateArcadiaOrder,
			Description: "Create a single inbound order in Arcadia by driving the web UI. " +
				"Requires a 9-digit master bill number, a product code and a quantity.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"master_bill_number": map[string]any{
						"type":        "string",
						"description": "9-digit master bill number",
						"pattern":     "^[0-9]{9}$",
					},
					"product_code": map[string]any{
						"type":        "string",
						"description": "Product code, e.g. PP48F",
					},
					"quantity": map[string]any{
						"type":        "integer",
						"description": "Number of units, must be at least 1",
						"minimum":     1,
					},
					"temperature": map[string]any{
						"type":        "string",
						"description": "Storage temperature category",
						"enum":        []string{"FREEZER", "COOLER", "FREEZER CRATES"},
					},
					"supplying_facility_number": map[string]any{
						"type":        "string",
						"description": "Supplying facility number; defaults to the master bill number",
					},
					"delivery_date": map[string]any{
						"type":        "string",
						"description": "Expected delivery date, free-form",
					},
					"delivery_company": map[string]any{
						"type":        "string",
						"description": "Carrier name",
					},
					"comments": map[string]any{
						"type":        "string",
						"description": "Free-form comments for the order",
					},
				},
				"required": []string{"master_bill_number", "product_code", "quantity"},
			},
		},
		{
			Name: toolRunFullPipeline,
			Description: "Run the complete flow: extract orders from the most recent inbound " +
				"email, then submit every product line to Arcadia. Reports per-order results " +
				"and the stage of any failure.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
	}
}
