package catalog

import (
	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/entity"
)

// parameterDefinitions returns the full built-in catalog. Reference
// ranges are adult general-population defaults; document-supplied ranges
// always take precedence during validation.
func parameterDefinitions() []entity.StandardParameter {
	return []entity.StandardParameter{
		// General chemistry
		{Key: "glucose_fasting", DisplayName: "Fasting Glucose", Unit: "mg/dL", ReferenceRange: "70-100", Category: constants.CategoryGeneralChemistry},
		{Key: "glucose_random", DisplayName: "Random Glucose", Unit: "mg/dL", ReferenceRange: "70-140", Category: constants.CategoryGeneralChemistry},
		{Key: "hemoglobin_a1c", DisplayName: "Hemoglobin A1c", Unit: "%", ReferenceRange: "4.0-5.6", Category: constants.CategoryGeneralChemistry},
		{Key: "sodium", DisplayName: "Sodium", Unit: "mmol/L", ReferenceRange: "136-145", Category: constants.CategoryGeneralChemistry},
		{Key: "potassium", DisplayName: "Potassium", Unit: "mmol/L", ReferenceRange: "3.5-5.1", Category: constants.CategoryGeneralChemistry},
		{Key: "chloride", DisplayName: "Chloride", Unit: "mmol/L", ReferenceRange: "98-107", Category: constants.CategoryGeneralChemistry},
		{Key: "bicarbonate", DisplayName: "Bicarbonate", Unit: "mmol/L", ReferenceRange: "22-29", Category: constants.CategoryGeneralChemistry},
		{Key: "anion_gap", DisplayName: "Anion Gap", Unit: "mmol/L", ReferenceRange: "8-16", Category: constants.CategoryGeneralChemistry},
		{Key: "base_excess", DisplayName: "Base Excess", Unit: "mmol/L", Category: constants.CategoryGeneralChemistry, AllowNegative: true},
		{Key: "calcium", DisplayName: "Calcium", Unit: "mg/dL", ReferenceRange: "8.5-10.5", Category: constants.CategoryGeneralChemistry},
		{Key: "magnesium", DisplayName: "Magnesium", Unit: "mg/dL", ReferenceRange: "1.7-2.2", Category: constants.CategoryGeneralChemistry},
		{Key: "phosphorus", DisplayName: "Phosphorus", Unit: "mg/dL", ReferenceRange: "2.5-4.5", Category: constants.CategoryGeneralChemistry},
		{Key: "total_protein", DisplayName: "Total Protein", Unit: "g/dL", ReferenceRange: "6.0-8.3", Category: constants.CategoryGeneralChemistry},
		{Key: "albumin", DisplayName: "Albumin", Unit: "g/dL", ReferenceRange: "3.5-5.0", Category: constants.CategoryGeneralChemistry},
		{Key: "amylase", DisplayName: "Amylase", Unit: "U/L", ReferenceRange: "30-110", Category: constants.CategoryGeneralChemistry},
		{Key: "lipase", DisplayName: "Lipase", Unit: "U/L", ReferenceRange: "10-140", Category: constants.CategoryGeneralChemistry},
		{Key: "lactate", DisplayName: "Lactate", Unit: "mmol/L", ReferenceRange: "0.5-2.2", Category: constants.CategoryGeneralChemistry},

		// Hematology
		{Key: "hemoglobin", DisplayName: "Hemoglobin", Unit: "g/dL", ReferenceRange: "12.0-17.5", Category: constants.CategoryHematology},
		{Key: "hematocrit", DisplayName: "Hematocrit", Unit: "%", ReferenceRange: "36-50", Category: constants.CategoryHematology},
		{Key: "rbc_count", DisplayName: "Red Blood Cell Count", Unit: "x10^6/uL", ReferenceRange: "4.0-5.9", Category: constants.CategoryHematology},
		{Key: "wbc_count", DisplayName: "White Blood Cell Count", Unit: "x10^3/uL", ReferenceRange: "4.5-11.0", Category: constants.CategoryHematology},
		{Key: "platelet_count", DisplayName: "Platelet Count", Unit: "x10^3/uL", ReferenceRange: "150-450", Category: constants.CategoryHematology},
		{Key: "mcv", DisplayName: "Mean Corpuscular Volume", Unit: "fL", ReferenceRange: "80-96", Category: constants.CategoryHematology},
		{Key: "mch", DisplayName: "Mean Corpuscular Hemoglobin", Unit: "pg", ReferenceRange: "27-33", Category: constants.CategoryHematology},
		{Key: "mchc", DisplayName: "MCH Concentration", Unit: "g/dL", ReferenceRange: "33-36", Category: constants.CategoryHematology},
		{Key: "rdw", DisplayName: "Red Cell Distribution Width", Unit: "%", ReferenceRange: "11.5-14.5", Category: constants.CategoryHematology},
		{Key: "mpv", DisplayName: "Mean Platelet Volume", Unit: "fL", ReferenceRange: "7.5-11.5", Category: constants.CategoryHematology},
		{Key: "neutrophils", DisplayName: "Neutrophils", Unit: "%", ReferenceRange: "40-70", Category: constants.CategoryHematology},
		{Key: "lymphocytes", DisplayName: "Lymphocytes", Unit: "%", ReferenceRange: "20-40", Category: constants.CategoryHematology},
		{Key: "monocytes", DisplayName: "Monocytes", Unit: "%", ReferenceRange: "2-8", Category: constants.CategoryHematology},
		{Key: "eosinophils", DisplayName: "Eosinophils", Unit: "%", ReferenceRange: "1-4", Category: constants.CategoryHematology},
		{Key: "basophils", DisplayName: "Basophils", Unit: "%", ReferenceRange: "0.5-1.0", Category: constants.CategoryHematology},

		// Lipid panel
		{Key: "total_cholesterol", DisplayName: "Total Cholesterol", Unit: "mg/dL", ReferenceRange: "<200", Category: constants.CategoryLipidPanel},
		{Key: "ldl_cholesterol", DisplayName: "LDL Cholesterol", Unit: "mg/dL", ReferenceRange: "<100", Category: constants.CategoryLipidPanel},
		{Key: "hdl_cholesterol", DisplayName: "HDL Cholesterol", Unit: "mg/dL", ReferenceRange: ">40", Category: constants.CategoryLipidPanel},
		{Key: "non_hdl_cholesterol", DisplayName: "Non-HDL Cholesterol", Unit: "mg/dL", ReferenceRange: "<130", Category: constants.CategoryLipidPanel},
		{Key: "vldl_cholesterol", DisplayName: "VLDL Cholesterol", Unit: "mg/dL", ReferenceRange: "5-40", Category: constants.CategoryLipidPanel},
		{Key: "triglycerides", DisplayName: "Triglycerides", Unit: "mg/dL", ReferenceRange: "<150", Category: constants.CategoryLipidPanel},
		{Key: "apolipoprotein_b", DisplayName: "Apolipoprotein B", Unit: "mg/dL", ReferenceRange: "<90", Category: constants.CategoryLipidPanel},
		{Key: "lipoprotein_a", DisplayName: "Lipoprotein(a)", Unit: "mg/dL", ReferenceRange: "<30", Category: constants.CategoryLipidPanel},

		// Liver function
		{Key: "alt", DisplayName: "ALT (SGPT)", Unit: "U/L", ReferenceRange: "10-50", Category: constants.CategoryLiverFunction},
		{Key: "ast", DisplayName: "AST (SGOT)", Unit: "U/L", ReferenceRange: "10-40", Category: constants.CategoryLiverFunction},
		{Key: "alp", DisplayName: "Alkaline Phosphatase", Unit: "U/L", ReferenceRange: "44-147", Category: constants.CategoryLiverFunction},
		{Key: "ggt", DisplayName: "Gamma-Glutamyl Transferase", Unit: "U/L", ReferenceRange: "9-48", Category: constants.CategoryLiverFunction},
		{Key: "total_bilirubin", DisplayName: "Total Bilirubin", Unit: "mg/dL", ReferenceRange: "0.1-1.2", Category: constants.CategoryLiverFunction},
		{Key: "direct_bilirubin", DisplayName: "Direct Bilirubin", Unit: "mg/dL", ReferenceRange: "<0.3", Category: constants.CategoryLiverFunction},
		{Key: "indirect_bilirubin", DisplayName: "Indirect Bilirubin", Unit: "mg/dL", ReferenceRange: "0.2-0.8", Category: constants.CategoryLiverFunction},

		// Kidney function
		{Key: "creatinine", DisplayName: "Creatinine", Unit: "mg/dL", ReferenceRange: "0.6-1.3", Category: constants.CategoryKidneyFunction},
		{Key: "blood_urea_nitrogen", DisplayName: "Blood Urea Nitrogen", Unit: "mg/dL", ReferenceRange: "7-20", Category: constants.CategoryKidneyFunction},
		{Key: "egfr", DisplayName: "Estimated GFR", Unit: "mL/min/1.73m2", ReferenceRange: ">60", Category: constants.CategoryKidneyFunction},
		{Key: "cystatin_c", DisplayName: "Cystatin C", Unit: "mg/L", ReferenceRange: "0.6-1.0", Category: constants.CategoryKidneyFunction},
		{Key: "uric_acid", DisplayName: "Uric Acid", Unit: "mg/dL", ReferenceRange: "3.5-7.2", Category: constants.CategoryKidneyFunction},

		// Thyroid
		{Key: "tsh", DisplayName: "TSH", Unit: "mIU/L", ReferenceRange: "0.4-4.0", Category: constants.CategoryThyroid},
		{Key: "free_t4", DisplayName: "Free T4", Unit: "ng/dL", ReferenceRange: "0.8-1.8", Category: constants.CategoryThyroid},
		{Key: "free_t3", DisplayName: "Free T3", Unit: "pg/mL", ReferenceRange: "2.3-4.2", Category: constants.CategoryThyroid},
		{Key: "total_t4", DisplayName: "Total T4", Unit: "ug/dL", ReferenceRange: "5.0-12.0", Category: constants.CategoryThyroid},
		{Key: "total_t3", DisplayName: "Total T3", Unit: "ng/dL", ReferenceRange: "80-200", Category: constants.CategoryThyroid},
		{Key: "tpo_antibodies", DisplayName: "TPO Antibodies", Unit: "IU/mL", ReferenceRange: "<35", Category: constants.CategoryThyroid},

		// Cardiac
		{Key: "troponin_i", DisplayName: "Troponin I", Unit: "ng/mL", ReferenceRange: "<0.04", Category: constants.CategoryCardiac},
		{Key: "ck", DisplayName: "Creatine Kinase", Unit: "U/L", ReferenceRange: "30-200", Category: constants.CategoryCardiac},
		{Key: "ck_mb", DisplayName: "CK-MB", Unit: "ng/mL", ReferenceRange: "<5", Category: constants.CategoryCardiac},
		{Key: "ldh", DisplayName: "Lactate Dehydrogenase", Unit: "U/L", ReferenceRange: "140-280", Category: constants.CategoryCardiac},
		{Key: "bnp", DisplayName: "BNP", Unit: "pg/mL", ReferenceRange: "<100", Category: constants.CategoryCardiac},
		{Key: "nt_pro_bnp", DisplayName: "NT-proBNP", Unit: "pg/mL", ReferenceRange: "<125", Category: constants.CategoryCardiac},

		// Inflammation and iron
		{Key: "crp", DisplayName: "C-Reactive Protein", Unit: "mg/L", ReferenceRange: "<10", Category: constants.CategoryInflammation},
		{Key: "hs_crp", DisplayName: "hs-CRP", Unit: "mg/L", ReferenceRange: "<3", Category: constants.CategoryInflammation},
		{Key: "esr", DisplayName: "ESR", Unit: "mm/hr", ReferenceRange: "0-20", Category: constants.CategoryInflammation},
		{Key: "ferritin", DisplayName: "Ferritin", Unit: "ng/mL", ReferenceRange: "20-250", Category: constants.CategoryInflammation},
		{Key: "procalcitonin", DisplayName: "Procalcitonin", Unit: "ng/mL", ReferenceRange: "<0.1", Category: constants.CategoryInflammation},
		{Key: "iron", DisplayName: "Serum Iron", Unit: "ug/dL", ReferenceRange: "60-170", Category: constants.CategoryInflammation},
		{Key: "tibc", DisplayName: "Total Iron Binding Capacity", Unit: "ug/dL", ReferenceRange: "240-450", Category: constants.CategoryInflammation},
		{Key: "transferrin_saturation", DisplayName: "Transferrin Saturation", Unit: "%", ReferenceRange: "20-50", Category: constants.CategoryInflammation},

		// Coagulation
		{Key: "prothrombin_time", DisplayName: "Prothrombin Time", Unit: "sec", ReferenceRange: "11-13.5", Category: constants.CategoryCoagulation},
		{Key: "inr", DisplayName: "INR", ReferenceRange: "0.8-1.1", Category: constants.CategoryCoagulation},
		{Key: "aptt", DisplayName: "aPTT", Unit: "sec", ReferenceRange: "25-35", Category: constants.CategoryCoagulation},
		{Key: "fibrinogen", DisplayName: "Fibrinogen", Unit: "mg/dL", ReferenceRange: "200-400", Category: constants.CategoryCoagulation},
		{Key: "d_dimer", DisplayName: "D-Dimer", Unit: "ng/mL", ReferenceRange: "<500", Category: constants.CategoryCoagulation},

		// Vitamins
		{Key: "vitamin_d", DisplayName: "Vitamin D (25-OH)", Unit: "ng/mL", ReferenceRange: "30-100", Category: constants.CategoryVitamins},
		{Key: "vitamin_b12", DisplayName: "Vitamin B12", Unit: "pg/mL", ReferenceRange: "200-900", Category: constants.CategoryVitamins},
		{Key: "folate", DisplayName: "Folate", Unit: "ng/mL", ReferenceRange: "2.7-17.0", Category: constants.CategoryVitamins},

		// Hormones
		{Key: "testosterone_total", DisplayName: "Total Testosterone", Unit: "ng/dL", ReferenceRange: "300-1000", Category: constants.CategoryHormones},
		{Key: "estradiol", DisplayName: "Estradiol", Unit: "pg/mL", ReferenceRange: "15-350", Category: constants.CategoryHormones},
		{Key: "cortisol", DisplayName: "Cortisol (AM)", Unit: "ug/dL", ReferenceRange: "6-23", Category: constants.CategoryHormones},
		{Key: "insulin", DisplayName: "Insulin", Unit: "uIU/mL", ReferenceRange: "2-25", Category: constants.CategoryHormones},
		{Key: "prolactin", DisplayName: "Prolactin", Unit: "ng/mL", ReferenceRange: "4-23", Category: constants.CategoryHormones},

		// Tumor markers
		{Key: "psa", DisplayName: "PSA", Unit: "ng/mL", ReferenceRange: "<4", Category: constants.CategoryTumorMarkers},
		{Key: "cea", DisplayName: "CEA", Unit: "ng/mL", ReferenceRange: "<3", Category: constants.CategoryTumorMarkers},
		{Key: "ca_125", DisplayName: "CA-125", Unit: "U/mL", ReferenceRange: "<35", Category: constants.CategoryTumorMarkers},
		{Key: "afp", DisplayName: "Alpha-Fetoprotein", Unit: "ng/mL", ReferenceRange: "<10", Category: constants.CategoryTumorMarkers},

		// Urinalysis (dipstick and physical)
		{Key: "urine_color", DisplayName: "Urine Color", ReferenceRange: "Yellow", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_appearance", DisplayName: "Urine Appearance", ReferenceRange: "Clear", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_ph", DisplayName: "Urine pH", ReferenceRange: "4.5-8.0", Category: constants.CategoryUrinalysis},
		{Key: "urine_specific_gravity", DisplayName: "Specific Gravity", ReferenceRange: "1.005-1.030", Category: constants.CategoryUrinalysis},
		{Key: "urine_protein", DisplayName: "Urine Protein", ReferenceRange: "Negative", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_glucose", DisplayName: "Urine Glucose", ReferenceRange: "Negative", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_ketones", DisplayName: "Urine Ketones", ReferenceRange: "Negative", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_blood", DisplayName: "Urine Blood", ReferenceRange: "Negative", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_bilirubin", DisplayName: "Urine Bilirubin", ReferenceRange: "Negative", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_urobilinogen", DisplayName: "Urobilinogen", Unit: "mg/dL", ReferenceRange: "0.2-1.0", Category: constants.CategoryUrinalysis},
		{Key: "urine_nitrite", DisplayName: "Urine Nitrite", ReferenceRange: "Negative", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},
		{Key: "urine_leukocyte_esterase", DisplayName: "Leukocyte Esterase", ReferenceRange: "Negative", Category: constants.CategoryUrinalysis, Kind: entity.ValueKindQualitative},

		// Urine chemistry
		{Key: "urine_creatinine", DisplayName: "Urine Creatinine", Unit: "mg/dL", ReferenceRange: "20-370", Category: constants.CategoryUrineChemistry},
		{Key: "urine_microalbumin", DisplayName: "Microalbumin", Unit: "mg/L", ReferenceRange: "<30", Category: constants.CategoryUrineChemistry},
		{Key: "urine_albumin_creatinine_ratio", DisplayName: "Albumin/Creatinine Ratio", Unit: "mg/g", ReferenceRange: "<30", Category: constants.CategoryUrineChemistry},
		{Key: "urine_protein_24h", DisplayName: "24h Urine Protein", Unit: "mg/24h", ReferenceRange: "<150", Category: constants.CategoryUrineChemistry},
		{Key: "urine_sodium", DisplayName: "Urine Sodium", Unit: "mmol/L", ReferenceRange: "40-220", Category: constants.CategoryUrineChemistry},
		{Key: "urine_potassium", DisplayName: "Urine Potassium", Unit: "mmol/L", ReferenceRange: "25-125", Category: constants.CategoryUrineChemistry},

		// Urine microscopy
		{Key: "urine_rbc", DisplayName: "RBC (Urine)", Unit: "/hpf", ReferenceRange: "0-2", Category: constants.CategoryUrineMicrobiology},
		{Key: "urine_wbc", DisplayName: "WBC (Urine)", Unit: "/hpf", ReferenceRange: "0-5", Category: constants.CategoryUrineMicrobiology},
		{Key: "urine_epithelial_cells", DisplayName: "Epithelial Cells", Unit: "/hpf", ReferenceRange: "Few", Category: constants.CategoryUrineMicrobiology, Kind: entity.ValueKindQualitative},
		{Key: "urine_bacteria", DisplayName: "Bacteria", ReferenceRange: "Negative", Category: constants.CategoryUrineMicrobiology, Kind: entity.ValueKindQualitative},
		{Key: "urine_casts", DisplayName: "Casts", Unit: "/lpf", ReferenceRange: "None", Category: constants.CategoryUrineMicrobiology, Kind: entity.ValueKindQualitative},
		{Key: "urine_crystals", DisplayName: "Crystals", ReferenceRange: "None", Category: constants.CategoryUrineMicrobiology, Kind: entity.ValueKindQualitative},
	}
}
