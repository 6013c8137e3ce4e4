package storage

// JSON schemas for the tenant documents that have a fixed shape. Synonyms
// stay schemaless: the document is a free-form canonical→aliases mapping.
var schemas = map[string]string{
	FileCatalog: `{
		"type": "object",
		"required": ["categories"],
		"properties": {
			"version": {"type": "integer"},
			"categories": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["id", "items"],
					"properties": {
						"id": {"type": "string"},
						"name": {"type": "string"},
						"items": {
							"type": "array",
							"items": {
								"type": "object",
								"required": ["sku", "name", "price"],
								"properties": {
									"sku": {"type": "string", "minLength": 1},
									"name": {"type": "string"},
									"price": {"type": "number", "minimum": 0},
									"unit": {"type": "string"},
									"tags": {"type": "array", "items": {"type": "string"}},
									"in_stock": {"type": "boolean"},
									"options": {
										"type": "array",
										"items": {
											"type": "object",
											"properties": {
												"name": {"type": "string"},
												"value": {"type": "string"}
											}
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}`,

	FileDelivery: `{
		"type": "object",
		"properties": {
			"areas": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["postcode_prefix"],
					"properties": {
						"postcode_prefix": {"type": "string", "minLength": 1},
						"fee": {"type": "number", "minimum": 0},
						"min_order": {"type": "number", "minimum": 0},
						"eta_min": {"type": "integer", "minimum": 0}
					}
				}
			},
			"exceptions": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["postcode"],
					"properties": {
						"postcode": {"type": "string", "minLength": 1},
						"fee": {"type": "number", "minimum": 0},
						"min_order": {"type": "number", "minimum": 0},
						"eta_min": {"type": "integer", "minimum": 0}
					}
				}
			},
			"click_and_collect": {"type": "boolean"},
			"notes": {"type": "string"}
		}
	}`,

	FileBranches: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "name", "lat", "lon"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"name": {"type": "string"},
				"postcode": {"type": "string"},
				"lat": {"type": "number"},
				"lon": {"type": "number"},
				"phone": {"type": "string"},
				"hours": {
					"type": "object",
					"additionalProperties": {"type": "string"}
				}
			}
		}
	}`,

	FileFAQ: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["q", "a"],
			"properties": {
				"q": {"type": "string", "minLength": 1},
				"a": {"type": "string"},
				"tags": {"type": "array", "items": {"type": "string"}}
			}
		}
	}`,
}
