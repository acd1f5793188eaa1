package rcdb

// conditionAlias is a named, reusable filter shortcut.
type conditionAlias struct {
	name    string
	comment string
	build   func() Expr
}

// conditionAliases is the built-in set of named filters, ported from the
// GlueX run-selection conventions: production-quality-run predicates,
// target/field/beam state, and run status codes.
var conditionAliases = []conditionAlias{
	{"is_production", "Is production run", aliasIsProduction},
	{"is_2018production", "Is production run", aliasIs2018Production},
	{"is_primex_production", "Is PrimEx production run", aliasIsPrimexProduction},
	{"is_dirc_production", "Is DIRC production run", aliasIsDircProduction},
	{"is_src_production", "Is SRC production run", aliasIsSrcProduction},
	{"is_cpp_production", "Is CPP production run", aliasIsCppProduction},
	{"is_production_long", "Is production run with long mode data", aliasIsProductionLong},
	{"is_cosmic", "Is cosmic run", aliasIsCosmic},
	{"is_empty_target", "Target is empty", aliasIsEmptyTarget},
	{"is_amorph_radiator", "Amorphous Radiator", aliasIsAmorphRadiator},
	{"is_coherent_beam", "Coherent Beam", aliasIsCoherentBeam},
	{"is_field_off", "Field Off", aliasIsFieldOff},
	{"is_field_on", "Field On", aliasIsFieldOn},
	{"status_calibration", "Run status = calibration", aliasStatusCalibration},
	{"status_approved_long", "Run status = approved (long)", aliasStatusApprovedLong},
	{"status_approved", "Run status = approved", aliasStatusApproved},
	{"status_unchecked", "Run status = unchecked", aliasStatusUnchecked},
	{"status_reject", "Run status = reject", aliasStatusReject},
}

// Alias returns the expression registered under name, if any.
func Alias(name string) (Expr, bool) {
	for _, a := range conditionAliases {
		if a.name == name {
			return a.build(), true
		}
	}
	return Expr{}, false
}

// AliasNames returns the names of every built-in alias, for CLI listing.
func AliasNames() []string {
	names := make([]string, len(conditionAliases))
	for i, a := range conditionAliases {
		names[i] = a.name
	}
	return names
}

func aliasIsProduction() Expr {
	return All(
		StringCond("run_type").In("hd_all.tsg", "hd_all.tsg_ps", "hd_all.bcal_fcal_st.tsg"),
		FloatCond("beam_current").Gt(2.0),
		IntCond("event_count").Gt(500_000),
		FloatCond("solenoid_current").Gt(100.0),
		StringCond("collimator_diameter").Neq("Blocking"),
	)
}

func aliasIs2018Production() Expr {
	return All(
		StringCond("daq_run").Eq("PHYSICS"),
		FloatCond("beam_current").Gt(2.0),
		IntCond("event_count").Gt(10_000_000),
		FloatCond("solenoid_current").Gt(100.0),
		StringCond("collimator_diameter").Neq("Blocking"),
	)
}

func aliasIsPrimexProduction() Expr {
	return All(
		StringCond("daq_run").Eq("PHYSICS_PRIMEX"),
		IntCond("event_count").Gt(1_000_000),
		StringCond("collimator_diameter").Neq("Blocking"),
	)
}

func aliasIsDircProduction() Expr {
	return All(
		StringCond("daq_run").Eq("PHYSICS_DIRC"),
		FloatCond("beam_current").Gt(2.0),
		IntCond("event_count").Gt(5_000_000),
		FloatCond("solenoid_current").Gt(100.0),
		StringCond("collimator_diameter").Neq("Blocking"),
	)
}

func aliasIsSrcProduction() Expr {
	return All(
		StringCond("daq_run").Eq("PHYSICS_SRC"),
		FloatCond("beam_current").Gt(2.0),
		IntCond("event_count").Gt(5_000_000),
		FloatCond("solenoid_current").Gt(100.0),
		StringCond("collimator_diameter").Neq("Blocking"),
	)
}

func aliasIsCppProduction() Expr {
	return All(
		StringCond("daq_run").Eq("PHYSICS_CPP"),
		FloatCond("beam_current").Gt(2.0),
		IntCond("event_count").Gt(5_000_000),
		FloatCond("solenoid_current").Gt(100.0),
		StringCond("collimator_diameter").Neq("Blocking"),
	)
}

func aliasIsProductionLong() Expr {
	return All(
		StringCond("daq_run").Eq("PHYSICS_raw"),
		FloatCond("beam_current").Gt(2.0),
		IntCond("event_count").Gt(5_000_000),
		FloatCond("solenoid_current").Gt(100.0),
		StringCond("collimator_diameter").Neq("Blocking"),
	)
}

func aliasIsCosmic() Expr {
	return All(
		StringCond("run_config").Contains("cosmic"),
		FloatCond("beam_current").Lt(1.0),
		IntCond("event_count").Gt(5_000),
	)
}

func aliasIsEmptyTarget() Expr {
	return StringCond("target_type").Eq("EMPTY & Ready")
}

func aliasIsAmorphRadiator() Expr {
	return FloatCond("polarization_angle").Lt(0.0)
}

func aliasIsCoherentBeam() Expr {
	return FloatCond("polarization_angle").Geq(0.0)
}

func aliasIsFieldOff() Expr {
	return FloatCond("solenoid_current").Lt(100.0)
}

func aliasIsFieldOn() Expr {
	return FloatCond("solenoid_current").Geq(100.0)
}

func aliasStatusCalibration() Expr {
	return IntCond("status").Eq(3)
}

func aliasStatusApprovedLong() Expr {
	return IntCond("status").Eq(2)
}

func aliasStatusApproved() Expr {
	return IntCond("status").Eq(1)
}

func aliasStatusUnchecked() Expr {
	return IntCond("status").Eq(-1)
}

func aliasStatusReject() Expr {
	return IntCond("status").Eq(0)
}
