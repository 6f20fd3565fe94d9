package domain

// NormalizeEntity prepares a form entity for submission to the Summit API.
// A falsy end_date is dropped so no null date is sent, and the organization
// reference is flattened into organization_name. The input is not modified.
func NormalizeEntity(entity map[string]any) map[string]any {
	normalized := make(map[string]any, len(entity)+1)
	for k, v := range entity {
		normalized[k] = v
	}

	if isFalsy(normalized["end_date"]) {
		delete(normalized, "end_date")
	}

	normalized["organization_name"] = organizationName(normalized["organization"])
	delete(normalized, "organization")

	return normalized
}

func organizationName(v any) string {
	switch org := v.(type) {
	case map[string]any:
		if name, ok := org["name"].(string); ok {
			return name
		}
	case *Organization:
		if org != nil {
			return org.Name
		}
	case Organization:
		return org.Name
	}
	return ""
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case int:
		return t == 0
	case int32:
		return t == 0
	case int64:
		return t == 0
	case float32:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}
