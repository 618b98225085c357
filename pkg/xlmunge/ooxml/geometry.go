package ooxml

// presetLabels maps DrawingML preset geometry names to readable labels.
var presetLabels = map[string]string{
	"flowChartProcess":           "AutoShape-FlowchartProcess",
	"flowChartDecision":          "AutoShape-FlowchartDecision",
	"flowChartTerminator":        "AutoShape-FlowchartTerminator",
	"flowChartData":              "AutoShape-FlowchartData",
	"flowChartDocument":          "AutoShape-FlowchartDocument",
	"flowChartMultidocument":     "AutoShape-FlowchartMultidocument",
	"flowChartPredefinedProcess": "AutoShape-FlowchartPredefinedProcess",
	"flowChartInternalStorage":   "AutoShape-FlowchartInternalStorage",
	"flowChartPreparation":       "AutoShape-FlowchartPreparation",
	"flowChartManualInput":       "AutoShape-FlowchartManualInput",
	"flowChartManualOperation":   "AutoShape-FlowchartManualOperation",
	"flowChartConnector":         "AutoShape-FlowchartConnector",
	"flowChartOffpageConnector":  "AutoShape-FlowchartOffpageConnector",
	"rect":                       "AutoShape-Rectangle",
	"roundRect":                  "AutoShape-RoundedRectangle",
	"ellipse":                    "AutoShape-Oval",
	"diamond":                    "AutoShape-Diamond",
	"triangle":                   "AutoShape-IsoscelesTriangle",
	"straightConnector1":         "Line",
	"bentConnector2":             "AutoShape-Connector",
	"bentConnector3":             "AutoShape-Connector",
	"bentConnector4":             "AutoShape-Connector",
	"bentConnector5":             "AutoShape-Connector",
	"curvedConnector2":           "AutoShape-Connector",
	"curvedConnector3":           "AutoShape-Connector",
	"curvedConnector4":           "AutoShape-Connector",
	"curvedConnector5":           "AutoShape-Connector",
	"line":                       "Line",
	"textBox":                    "TextBox",
}

// geometryLabel returns the label for a preset geometry, "" when there is
// none. Unlisted presets are reported as "AutoShape-<name>".
func geometryLabel(prst string) string {
	if prst == "" {
		return ""
	}
	if label, ok := presetLabels[prst]; ok {
		return label
	}
	return "AutoShape-" + prst
}
