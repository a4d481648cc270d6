package dashboard

// DefaultContext 返回覆盖常见模板变量的校验上下文，每次调用都返回新的副本
func DefaultContext() map[string]any {
	return map[string]any{
		"ENV_NAME":    "test",
		"environment": "test",

		"dashboard_title":       "Test Dashboard",
		"dashboard_description": "Test dashboard for validation",

		"primary_index":           "security",
		"streams_index":           "streams",
		"expected_sources_lookup": "expected_data_sources.csv",

		"secondary_indexes":       []any{"firewall", "ids", "proxy", "endpoint"},
		"capture_interfaces":      []any{"eth0", "eth1", "bond0"},
		"streams_sourcetypes":     []any{"stream:tcp", "stream:udp", "stream:icmp", "stream:dns", "stream:http"},
		"data_models_to_validate": []any{"Authentication", "Network_Traffic", "Malware", "Web", "Email"},
		"primary_indexes":         []any{"security", "firewall", "ids"},

		"ingestion_threshold_gb":         1.0,
		"missing_data_threshold_minutes": 60,
		"compliance_threshold":           85.0,
		"field_population_threshold":     75.0,
		"expected_throughput_mbps":       1000,
		"packet_loss_threshold":          1.0,

		"time_range_earliest": "-24h@h",
		"time_range_latest":   "now",

		"required_cim_fields": map[string]any{
			"Authentication":  []any{"user", "src", "dest", "action", "app"},
			"Network_Traffic": []any{"src_ip", "dest_ip", "src_port", "dest_port", "protocol", "action"},
			"Malware":         []any{"signature", "file_name", "file_hash", "dest", "vendor_product"},
			"Web":             []any{"url", "uri_path", "http_method", "status", "src_ip"},
			"Email":           []any{"recipient", "sender", "subject", "action"},
		},

		"enable_acceleration": true,
		"strict_validation":   false,

		"org_name":       "test_org",
		"splunk_version": SplunkVersion,
		"dashboard_type": DashboardType,
	}
}

// SampleContext 在 DefaultContext 基础上叠加参数默认值，
// 既无默认值也不在默认上下文中的参数按类型填入样例值
func SampleContext(params map[string]Parameter) map[string]any {
	ctx := DefaultContext()
	for name, p := range params {
		if p.Default != nil {
			ctx[name] = p.Default
			continue
		}
		if _, ok := ctx[name]; ok {
			continue
		}
		ctx[name] = sampleValue(name, p.Type)
	}

	return ctx
}

func sampleValue(name, typ string) any {
	switch typ {
	case "", "string":
		return "sample_" + name
	case "number":
		return 42
	case "boolean":
		return true
	case "array":
		return []any{"item1", "item2", "item3"}
	case "object":
		return map[string]any{"key": "value"}
	default:
		return "unknown_type_" + name
	}
}
