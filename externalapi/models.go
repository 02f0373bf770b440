package externalapi

// RxNorm response shapes, mirroring the rxnav.nlm.nih.gov REST JSON.

// RxNormCandidate is one approximate-match hit.
type RxNormCandidate struct {
	RxCui string `json:"rxcui"`
	Name  string `json:"name"`
	Score int    `json:"score,string"`
	Rank  int    `json:"rank,string"`
}

type rxNormApproximateGroup struct {
	Candidates []RxNormCandidate `json:"candidate"`
}

type rxNormApproximateResponse struct {
	ApproximateGroup *rxNormApproximateGroup `json:"approximateGroup"`
}

// RxNormProperties are the canonical properties of one RxCui.
type RxNormProperties struct {
	RxCui    string `json:"rxcui"`
	Name     string `json:"name"`
	Synonym  string `json:"synonym"`
	TTY      string `json:"tty"`
	Language string `json:"language"`
}

type rxNormPropertiesResponse struct {
	Properties *RxNormProperties `json:"properties"`
}

// RxNormConceptProperty is one related concept.
type RxNormConceptProperty struct {
	RxCui string `json:"rxcui"`
	Name  string `json:"name"`
	TTY   string `json:"tty"`
}

type rxNormConceptGroup struct {
	TTY               string                  `json:"tty"`
	ConceptProperties []RxNormConceptProperty `json:"conceptProperties"`
}

type rxNormRelatedGroup struct {
	ConceptGroup []rxNormConceptGroup `json:"conceptGroup"`
}

type rxNormRelatedResponse struct {
	RelatedGroup *rxNormRelatedGroup `json:"relatedGroup"`
}

type rxClassConcept struct {
	ClassName string `json:"className"`
	ClassType string `json:"classType"`
}

type rxClassDrugInfo struct {
	RxClassMinConceptItem rxClassConcept `json:"rxclassMinConceptItem"`
}

type rxClassDrugInfoList struct {
	RxClassDrugInfo []rxClassDrugInfo `json:"rxclassDrugInfo"`
}

type rxClassResponse struct {
	RxClassDrugInfoList *rxClassDrugInfoList `json:"rxclassDrugInfoList"`
}

// OpenFDA response shapes, mirroring api.fda.gov/drug/label.json.

// FDADrugResponse is the envelope of a label search.
type FDADrugResponse struct {
	Meta    *FDAMeta        `json:"meta,omitempty"`
	Results []FDADrugResult `json:"results"`
}

// FDAMeta carries result pagination information.
type FDAMeta struct {
	Results *FDAMetaResults `json:"results,omitempty"`
}

// FDAMetaResults carries result counts.
type FDAMetaResults struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// FDADrugResult is one drug label document.
type FDADrugResult struct {
	ID               string          `json:"id"`
	DrugInteractions []string        `json:"drug_interactions"`
	Warnings         []string        `json:"warnings"`
	IndicationsUsage []string        `json:"indications_and_usage"`
	DosageAndAdmin   []string        `json:"dosage_and_administration"`
	OpenFDA          *OpenFDASection `json:"openfda,omitempty"`
}

// OpenFDASection is the harmonized openfda block of a label.
type OpenFDASection struct {
	BrandName        []string `json:"brand_name"`
	GenericName      []string `json:"generic_name"`
	ManufacturerName []string `json:"manufacturer_name"`
	ProductNDC       []string `json:"product_ndc"`
	ProductType      []string `json:"product_type"`
	Route            []string `json:"route"`
	SubstanceName    []string `json:"substance_name"`
	RxCui            []string `json:"rxcui"`
}
