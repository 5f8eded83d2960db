package krm

import (
	"fmt"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/kustomize/api/types"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/diag"
	cerrors "github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/errors"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/intent"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/qos"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/sites"
)

// API versions of the generated kinds
const (
	ProvisioningRequestAPIVersion = "o2ims.provisioning.oran.org/v1alpha1"
	NetworkSliceAPIVersion        = "workload.nephio.org/v1alpha1"
	ConfigMapAPIVersion           = "v1"
)

// Label and annotation keys
const (
	LabelIntentID    = "intent-id"
	LabelServiceType = "service-type"
	LabelTargetSite  = "target-site"

	AnnotationGeneratedBy     = "generated-by"
	AnnotationTimestamp       = "timestamp"
	AnnotationResourceProfile = "resource-profile"
	AnnotationLocalConfig     = "config.kubernetes.io/local-config"

	GeneratorName = "intent-compiler"
)

// ObjectMeta is the subset of Kubernetes object metadata the compiler sets
type ObjectMeta struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// ProvisioningRequest asks O2IMS to provision infrastructure on a site
type ProvisioningRequest struct {
	metav1.TypeMeta `json:",inline"`
	Metadata        ObjectMeta              `json:"metadata"`
	Spec            ProvisioningRequestSpec `json:"spec"`
}

type ProvisioningRequestSpec struct {
	Description          string                  `json:"description"`
	TargetCluster        string                  `json:"targetCluster"`
	NetworkConfig        NetworkConfig           `json:"networkConfig"`
	ResourceRequirements Profile                 `json:"resourceRequirements"`
	SLARequirements      *map[string]interface{} `json:"slaRequirements,omitempty"`
}

type NetworkConfig struct {
	PLMNID    string `json:"plmnId"`
	GNBID     string `json:"gnbId"`
	TAC       string `json:"tac"`
	SliceType string `json:"sliceType"`
}

// NetworkSlice describes the slice QoS and PLMN for a site
type NetworkSlice struct {
	metav1.TypeMeta `json:",inline"`
	Metadata        ObjectMeta       `json:"metadata"`
	Spec            NetworkSliceSpec `json:"spec"`
}

type NetworkSliceSpec struct {
	SliceType string                 `json:"sliceType"`
	PLMN      sites.PLMN             `json:"plmn"`
	QoS       map[string]interface{} `json:"qos"`
}

// Generator turns an intent into per-site resources. Its output depends
// only on the intent, the site and the configured timestamp.
type Generator struct {
	Profiles   Profiles
	SliceTypes *qos.SliceTypes
	// Timestamp is stamped into ProvisioningRequest annotations
	Timestamp string
}

// NewGenerator returns a generator with the built in profiles and slice types
func NewGenerator(timestamp string) *Generator {
	return &Generator{
		Profiles:   DefaultProfiles(),
		SliceTypes: qos.DefaultSliceTypes(),
		Timestamp:  timestamp,
	}
}

// GenerateSite produces every resource of one site, kustomization last
func (g *Generator) GenerateSite(in *intent.Intent, site sites.Site) ([]Resource, diag.List, error) {
	var diags diag.List

	pr, prDiags, err := g.ProvisioningRequest(in, site)
	if err != nil {
		return nil, nil, err
	}
	diags = append(diags, prDiags...)

	cm, err := ConfigMap(in, site)
	if err != nil {
		return nil, nil, err
	}
	resources := []Resource{pr, cm}

	if in.HasSLA() {
		ns, nsDiags, err := g.NetworkSlice(in, site)
		if err != nil {
			return nil, nil, err
		}
		diags = append(diags, nsDiags...)
		resources = append(resources, ns)
	}

	k, err := Kustomization(in, site, resources)
	if err != nil {
		return nil, nil, err
	}
	resources = append(resources, k)

	for _, r := range resources {
		diags = append(diags, checkNames(r)...)
	}
	return resources, diags.Dedupe().WithSite(site.Name), nil
}

// ProvisioningRequest builds the O2IMS provisioning request for site
func (g *Generator) ProvisioningRequest(in *intent.Intent, site sites.Site) (Resource, diag.List, error) {
	var diags diag.List

	profile, d, err := g.Profiles.Resolve(in.ResourceProfile)
	if err != nil {
		return Resource{}, nil, err
	}
	if d != nil {
		diags = append(diags, *d)
	}
	sliceType, d := g.SliceTypes.Lookup(in.ServiceType)
	if d != nil {
		diags = append(diags, *d)
	}

	pr := ProvisioningRequest{
		TypeMeta: metav1.TypeMeta{APIVersion: ProvisioningRequestAPIVersion, Kind: string(KindProvisioningRequest)},
		Metadata: ObjectMeta{
			Name:      fmt.Sprintf("%s-%s", in.IntentID, site.Name),
			Namespace: site.Namespace,
			Labels:    workloadLabels(in, site),
			Annotations: map[string]string{
				AnnotationGeneratedBy:     GeneratorName,
				AnnotationTimestamp:       g.Timestamp,
				AnnotationResourceProfile: in.ResourceProfile,
			},
		},
		Spec: ProvisioningRequestSpec{
			Description:   fmt.Sprintf("Provisioning request for %s service at %s", in.ServiceType, site.Name),
			TargetCluster: site.ClusterID,
			NetworkConfig: NetworkConfig{
				PLMNID:    site.PLMN.ID(),
				GNBID:     site.GNBID,
				TAC:       site.TAC,
				SliceType: sliceType,
			},
			ResourceRequirements: profile,
		},
	}
	if in.HasSLA() {
		sla := qos.ConvertSLA(in.SLA)
		pr.Spec.SLARequirements = &sla
	}

	r, err := NewResource(site.Name, KindProvisioningRequest, pr)
	return r, diags, err
}

// ConfigMap carries the defaulted intent document to the site
func ConfigMap(in *intent.Intent, site sites.Site) (Resource, error) {
	payload, err := canonical.JSON(in.Raw())
	if err != nil {
		return Resource{}, cerrors.NewResourceGenerationError("krm", "cannot encode intent.json", err)
	}

	cm := &unstructured.Unstructured{Object: map[string]interface{}{}}
	cm.SetAPIVersion(ConfigMapAPIVersion)
	cm.SetKind(string(KindConfigMap))
	cm.SetName(fmt.Sprintf("intent-%s-%s", in.IntentID, site.Name))
	cm.SetNamespace(site.Namespace)
	cm.SetLabels(map[string]string{
		LabelIntentID:   in.IntentID,
		LabelTargetSite: site.Name,
	})
	data := map[string]string{
		"intent.json": string(payload),
		"site":        site.Name,
		"serviceType": in.ServiceType,
	}
	if err := unstructured.SetNestedStringMap(cm.Object, data, "data"); err != nil {
		return Resource{}, cerrors.NewResourceGenerationError("krm", "cannot set ConfigMap data", err)
	}

	return NewResource(site.Name, KindConfigMap, cm.Object)
}

// NetworkSlice builds the slice description. Only intents with an sla
// object get one.
func (g *Generator) NetworkSlice(in *intent.Intent, site sites.Site) (Resource, diag.List, error) {
	if !in.HasSLA() {
		return Resource{}, nil, cerrors.NewResourceGenerationError("krm",
			fmt.Sprintf("intent %s has no sla, no NetworkSlice can be built", in.IntentID), nil)
	}

	var diags diag.List
	sliceType, d := g.SliceTypes.Lookup(in.ServiceType)
	if d != nil {
		diags = append(diags, *d)
	}

	ns := NetworkSlice{
		TypeMeta: metav1.TypeMeta{APIVersion: NetworkSliceAPIVersion, Kind: string(KindNetworkSlice)},
		Metadata: ObjectMeta{
			Name:      fmt.Sprintf("slice-%s-%s", in.IntentID, site.Name),
			Namespace: site.Namespace,
			Labels:    workloadLabels(in, site),
		},
		Spec: NetworkSliceSpec{
			SliceType: sliceType,
			PLMN:      site.PLMN,
			QoS:       qos.ConvertSLAToQoS(in.SLA),
		},
	}

	r, err := NewResource(site.Name, KindNetworkSlice, ns)
	return r, diags, err
}

// Kustomization lists the other resources of the site. The resources list
// is sorted by filename since its order is significant to kustomize.
func Kustomization(in *intent.Intent, site sites.Site, others []Resource) (Resource, error) {
	files := make([]string, 0, len(others))
	for _, r := range others {
		if r.Kind == KindKustomization {
			continue
		}
		files = append(files, r.Filename)
	}
	sort.Strings(files)

	k := types.Kustomization{
		TypeMeta: types.TypeMeta{
			APIVersion: types.KustomizationVersion,
			Kind:       types.KustomizationKind,
		},
		MetaData: &types.ObjectMeta{
			Name:        "kustomization-" + site.Name,
			Annotations: map[string]string{AnnotationLocalConfig: "true"},
		},
		Namespace: site.Namespace,
		Resources: files,
		CommonLabels: map[string]string{
			LabelTargetSite: site.Name,
			LabelIntentID:   in.IntentID,
		},
	}

	return NewResource(site.Name, KindKustomization, k)
}

func workloadLabels(in *intent.Intent, site sites.Site) map[string]string {
	return map[string]string{
		LabelIntentID:    in.IntentID,
		LabelServiceType: in.ServiceType,
		LabelTargetSite:  site.Name,
	}
}
