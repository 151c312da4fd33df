package tiptap

// getAttrString безопасно извлекает строковый атрибут из map.
func getAttrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	str, ok := attrs[key].(string)
	if !ok {
		return ""
	}
	return str
}

// getAttr возвращает атрибут без приведения типа. Числа из JSON приходят как float64.
func getAttr(attrs map[string]any, key string) any {
	if attrs == nil {
		return nil
	}
	return attrs[key]
}
