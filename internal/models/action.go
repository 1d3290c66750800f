package models

// Action names. Every unit understands the common actions plus the three of
// its specialty.
const (
	ActionOrganizeTeam     = "organize_team"
	ActionReleaseResources = "release_resources"
	ActionDeployResources  = "deploy_resources"
	ActionReportStatus     = "report_status"

	ActionGetMedicalResources = "get_medical_resources"
	ActionOrganizeMedicalTeam = "organize_medical_team"
	ActionCreateMedicalPlan   = "create_medical_plan"

	ActionIdentifyHazard     = "identify_hazard"
	ActionOrganizeRescueTeam = "organize_rescue_team"
	ActionCreateRescuePlan   = "create_rescue_plan"

	ActionSetSecurityPerimeter    = "set_security_perimeter"
	ActionCreateEvacuationPlan    = "create_evacuation_plan"
	ActionDeploySecurityPersonnel = "deploy_security_personnel"

	ActionGetEnvironmentalData  = "get_environmental_data"
	ActionAnalyzeRisk           = "analyze_risk"
	ActionPredictDisasterSpread = "predict_disaster_spread"

	ActionGetTrafficStatus        = "get_traffic_status"
	ActionPlanRescueRoute         = "plan_rescue_route"
	ActionImplementTrafficControl = "implement_traffic_control"
)
