package match

// synonymEntry maps alternate test spellings to one canonical key.
// Lookup scans for an exact synonym first, then rescans allowing
// substring containment. The first entry to hit wins a scan, so entries
// are arranged most-specific-first (hs_crp before crp, mchc before mch)
// and an entry meant to own a generic spelling keeps it ahead of wider
// matches (total_bilirubin captures bare bilirubin). Exact canonical
// keys never reach these tables, the direct catalog lookup catches
// them earlier.
type synonymEntry struct {
	key      string
	synonyms []string
}

// bloodSynonyms covers serum and plasma tests.
func bloodSynonyms() []synonymEntry {
	return []synonymEntry{
		{key: "hemoglobin_a1c", synonyms: []string{"hba1c", "a1c", "glycated_hemoglobin", "glycosylated_hemoglobin", "hemoglobin_a1c"}},
		{key: "hs_crp", synonyms: []string{"hs_crp", "hscrp", "high_sensitivity_crp", "cardio_crp"}},

		// Thyroid: free hormone entries must precede the totals.
		{key: "free_t3", synonyms: []string{"free_t3", "ft3"}},
		{key: "free_t4", synonyms: []string{"free_t4", "ft4"}},
		{key: "tsh", synonyms: []string{"tsh", "thyroid_stimulating_hormone", "thyrotropin"}},
		{key: "total_t3", synonyms: []string{"total_t3", "t3_total", "triiodothyronine"}},
		{key: "total_t4", synonyms: []string{"total_t4", "t4_total", "thyroxine"}},
		{key: "tpo_antibodies", synonyms: []string{"tpo", "anti_tpo", "thyroid_peroxidase"}},

		// Lipids: fractions before the plain cholesterol entry. Bare HDL
		// and LDL take precedence over the rarer non-HDL and VLDL short
		// forms, which only resolve through their fully spelled names.
		{key: "hdl_cholesterol", synonyms: []string{"hdl_c", "hdl"}},
		{key: "ldl_cholesterol", synonyms: []string{"ldl_c", "ldl"}},
		{key: "apolipoprotein_b", synonyms: []string{"apolipoprotein_b", "apo_b", "apob"}},
		{key: "lipoprotein_a", synonyms: []string{"lipoprotein_a", "lp_a", "lpa"}},
		{key: "total_cholesterol", synonyms: []string{"total_cholesterol", "cholesterol_total", "cholesterol"}},
		{key: "triglycerides", synonyms: []string{"triglycerides", "triglyceride", "tgl"}},

		// Coagulation.
		{key: "inr", synonyms: []string{"inr", "international_normalized_ratio"}},
		{key: "aptt", synonyms: []string{"aptt", "activated_partial_thromboplastin_time", "ptt"}},
		{key: "prothrombin_time", synonyms: []string{"prothrombin_time", "protime"}},
		{key: "fibrinogen", synonyms: []string{"fibrinogen"}},
		{key: "d_dimer", synonyms: []string{"d_dimer", "ddimer"}},

		// Kidney: the creatinine entry stays ahead of creatine kinase.
		{key: "creatinine", synonyms: []string{"serum_creatinine"}},
		{key: "egfr", synonyms: []string{"egfr", "estimated_gfr", "glomerular_filtration_rate", "gfr"}},
		{key: "cystatin_c", synonyms: []string{"cystatin_c", "cystatin"}},
		{key: "blood_urea_nitrogen", synonyms: []string{"blood_urea_nitrogen", "bun", "urea_nitrogen", "urea"}},
		{key: "uric_acid", synonyms: []string{"uric_acid", "urate"}},

		// Cardiac.
		{key: "nt_pro_bnp", synonyms: []string{"nt_pro_bnp", "ntprobnp", "nt_probnp", "pro_bnp"}},
		{key: "bnp", synonyms: []string{"bnp", "brain_natriuretic_peptide", "b_type_natriuretic_peptide"}},
		{key: "ck_mb", synonyms: []string{"ck_mb", "ckmb", "creatine_kinase_mb"}},
		{key: "ck", synonyms: []string{"creatine_kinase", "cpk"}},
		{key: "troponin_i", synonyms: []string{"troponin_i", "troponin", "trop_i", "ctni", "cardiac_troponin"}},
		{key: "ldh", synonyms: []string{"ldh", "lactate_dehydrogenase"}},

		// Tumor markers, before the liver and electrolyte entries that
		// their spellings overlap with.
		{key: "ca_125", synonyms: []string{"ca_125", "ca125", "cancer_antigen_125"}},
		{key: "cea", synonyms: []string{"cea", "carcinoembryonic_antigen"}},
		{key: "psa", synonyms: []string{"psa", "prostate_specific_antigen"}},
		{key: "afp", synonyms: []string{"afp", "alpha_fetoprotein", "alpha_foetoprotein"}},

		// Liver: the total bilirubin entry carries no bare "bilirubin"
		// so the qualified forms fall through to their own entries.
		{key: "total_bilirubin", synonyms: []string{"total_bilirubin", "bilirubin_total", "tbil"}},
		{key: "direct_bilirubin", synonyms: []string{"direct_bilirubin", "bilirubin_direct", "conjugated_bilirubin", "dbil"}},
		{key: "indirect_bilirubin", synonyms: []string{"indirect_bilirubin", "bilirubin_indirect", "unconjugated_bilirubin"}},
		{key: "alt", synonyms: []string{"sgpt", "alanine_aminotransferase", "alanine_transaminase"}},
		{key: "ast", synonyms: []string{"sgot", "aspartate_aminotransferase", "aspartate_transaminase"}},
		{key: "alp", synonyms: []string{"alp", "alkaline_phosphatase"}},
		{key: "ggt", synonyms: []string{"ggt", "gamma_gt", "gamma_glutamyl_transferase", "ggtp"}},

		// Inflammation and iron studies.
		{key: "crp", synonyms: []string{"crp", "c_reactive_protein"}},
		{key: "esr", synonyms: []string{"esr", "erythrocyte_sedimentation_rate", "sed_rate"}},
		{key: "ferritin", synonyms: []string{"ferritin"}},
		{key: "procalcitonin", synonyms: []string{"procalcitonin", "pct"}},
		{key: "tibc", synonyms: []string{"tibc", "total_iron_binding_capacity", "iron_binding_capacity"}},
		{key: "transferrin_saturation", synonyms: []string{"transferrin_saturation", "transferrin_sat", "tsat"}},
		{key: "iron", synonyms: []string{"serum_iron", "iron"}},

		// Vitamins and hormones.
		{key: "vitamin_d", synonyms: []string{"vitamin_d", "25_oh_vitamin_d", "25_hydroxy_vitamin_d", "25_oh_d", "vit_d", "cholecalciferol"}},
		{key: "vitamin_b12", synonyms: []string{"vitamin_b12", "vit_b12", "b12", "cobalamin", "cyanocobalamin"}},
		{key: "folate", synonyms: []string{"folate", "folic_acid", "vitamin_b9"}},
		{key: "testosterone_total", synonyms: []string{"total_testosterone", "testosterone_total", "testosterone"}},
		{key: "estradiol", synonyms: []string{"estradiol", "oestradiol", "e2"}},
		{key: "cortisol", synonyms: []string{"cortisol", "serum_cortisol", "morning_cortisol"}},
		{key: "insulin", synonyms: []string{"insulin", "fasting_insulin"}},
		{key: "prolactin", synonyms: []string{"prolactin", "prl"}},

		// General chemistry.
		{key: "glucose_fasting", synonyms: []string{"fasting_glucose", "glucose_fasting", "fbs", "fasting_blood_sugar", "fasting_plasma_glucose", "fpg"}},
		{key: "glucose_random", synonyms: []string{"random_glucose", "glucose_random", "rbs", "random_blood_sugar", "postprandial_glucose", "ppbs"}},
		{key: "amylase", synonyms: []string{"amylase", "serum_amylase"}},
		{key: "lipase", synonyms: []string{"lipase", "serum_lipase"}},
		{key: "total_protein", synonyms: []string{"total_protein", "protein_total", "serum_protein"}},
		{key: "albumin", synonyms: []string{"albumin", "serum_albumin", "alb"}},
		{key: "lactate", synonyms: []string{"lactic_acid"}},

		// CBC: the corpuscular indices precede the plain hemoglobin entry.
		{key: "mchc", synonyms: []string{"mchc", "mch_concentration", "mean_corpuscular_hemoglobin_concentration"}},
		{key: "mch", synonyms: []string{"mch", "mean_corpuscular_hemoglobin"}},
		{key: "mcv", synonyms: []string{"mcv", "mean_corpuscular_volume"}},
		{key: "hemoglobin", synonyms: []string{"hemoglobin", "haemoglobin", "hgb"}},
		{key: "hematocrit", synonyms: []string{"hematocrit", "haematocrit", "hct", "pcv", "packed_cell_volume"}},
		{key: "rbc_count", synonyms: []string{"rbc_count", "red_blood_cell_count", "red_blood_cells", "red_cell_count", "rbc", "erythrocyte_count", "erythrocytes"}},
		{key: "wbc_count", synonyms: []string{"wbc_count", "white_blood_cell_count", "white_blood_cells", "wbc", "leukocytes", "leucocytes", "total_leukocyte_count", "tlc"}},
		{key: "platelet_count", synonyms: []string{"platelet_count", "platelets", "plt", "thrombocytes", "thrombocyte_count"}},
		{key: "rdw", synonyms: []string{"rdw", "rdw_cv", "red_cell_distribution_width"}},
		{key: "mpv", synonyms: []string{"mpv", "mean_platelet_volume"}},
		{key: "neutrophils", synonyms: []string{"neutrophils", "neutrophil", "polymorphs"}},
		{key: "lymphocytes", synonyms: []string{"lymphocytes", "lymphocyte", "lymphs"}},
		{key: "monocytes", synonyms: []string{"monocytes", "monocyte"}},
		{key: "eosinophils", synonyms: []string{"eosinophils", "eosinophil", "eos"}},
		{key: "basophils", synonyms: []string{"basophils", "basophil"}},

		// Electrolytes and blood gas leftovers sit last, their spellings
		// are substrings of too many other names.
		{key: "bicarbonate", synonyms: []string{"bicarbonate", "hco3", "co2", "carbon_dioxide"}},
		{key: "phosphorus", synonyms: []string{"phosphorus", "phosphate", "serum_phosphorus", "po4"}},
		{key: "magnesium", synonyms: []string{"magnesium", "serum_magnesium", "mg"}},
		{key: "calcium", synonyms: []string{"calcium", "serum_calcium", "total_calcium", "ionized_calcium"}},
		{key: "sodium", synonyms: []string{"sodium", "serum_sodium"}},
		{key: "potassium", synonyms: []string{"potassium", "serum_potassium"}},
		{key: "chloride", synonyms: []string{"chloride", "serum_chloride"}},
	}
}

// urineSynonyms covers urinalysis, urine chemistry and urine microscopy.
// Generic names like "glucose" or "protein" are safe here because the
// namespace already restricts lookups to urine parameters.
func urineSynonyms() []synonymEntry {
	return []synonymEntry{
		{key: "urine_leukocyte_esterase", synonyms: []string{"leukocyte_esterase", "leucocyte_esterase"}},
		{key: "urine_specific_gravity", synonyms: []string{"specific_gravity", "sp_gr", "sg"}},

		// Urine chemistry: the bare creatinine entry stays ahead of the
		// ratio entry so plain "Creatinine" does not match the ratio.
		{key: "urine_creatinine", synonyms: []string{"urine_creatinine"}},
		{key: "urine_microalbumin", synonyms: []string{"microalbumin", "urine_microalbumin"}},
		{key: "urine_albumin_creatinine_ratio", synonyms: []string{"albumin_creatinine_ratio", "albumin_to_creatinine_ratio", "acr", "urine_acr", "microalbumin_creatinine_ratio"}},
		{key: "urine_protein_24h", synonyms: []string{"24h_urine_protein", "24_hour_urine_protein", "24h_protein"}},
		{key: "urine_protein", synonyms: []string{"urine_protein", "protein"}},
		{key: "urine_sodium", synonyms: []string{"urine_sodium", "sodium"}},
		{key: "urine_potassium", synonyms: []string{"urine_potassium", "potassium"}},

		// Dipstick.
		{key: "urine_glucose", synonyms: []string{"urine_glucose", "glucose", "sugar"}},
		{key: "urine_ketones", synonyms: []string{"urine_ketones", "ketones", "ketone", "acetone"}},
		{key: "urine_blood", synonyms: []string{"urine_blood", "occult_blood"}},
		{key: "urine_bilirubin", synonyms: []string{"urine_bilirubin", "bilirubin"}},
		{key: "urine_urobilinogen", synonyms: []string{"urobilinogen"}},
		{key: "urine_nitrite", synonyms: []string{"nitrite", "nitrites"}},

		// Microscopy.
		{key: "urine_rbc", synonyms: []string{"urine_rbc", "rbc", "red_blood_cells", "erythrocytes"}},
		{key: "urine_wbc", synonyms: []string{"urine_wbc", "wbc", "white_blood_cells", "leukocytes", "pus_cells"}},
		{key: "urine_epithelial_cells", synonyms: []string{"epithelial_cells", "epithelial", "squamous_epithelial_cells"}},
		{key: "urine_bacteria", synonyms: []string{"bacteria", "bacteriuria"}},
		{key: "urine_casts", synonyms: []string{"casts", "hyaline_casts", "granular_casts", "cast"}},
		{key: "urine_crystals", synonyms: []string{"crystals", "crystal"}},

		// Physical properties last, "ph" in particular is a substring of
		// far too many words to sit any earlier.
		{key: "urine_color", synonyms: []string{"color", "colour"}},
		{key: "urine_appearance", synonyms: []string{"appearance", "clarity", "transparency", "turbidity"}},
		{key: "urine_ph", synonyms: []string{"ph", "reaction"}},
	}
}
