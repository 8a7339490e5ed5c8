package config

import (
	"context"
	"fmt"

	"github.com/hdwhdw/pathmap/pkg/pathutil"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/tools/clientcmd"
)

// PathMappingGVR identifies the PathMapping custom resource
var PathMappingGVR = schema.GroupVersionResource{
	Group:    "pathmap.io",
	Version:  "v1",
	Resource: "pathmappings",
}

// PathMappingKind is the kind of the PathMapping custom resource
const PathMappingKind = "PathMapping"

// RuleFromUnstructured extracts a mapping rule from a PathMapping object
func RuleFromUnstructured(obj *unstructured.Unstructured) (pathutil.Rule, error) {
	if obj == nil {
		return pathutil.Rule{}, fmt.Errorf("path mapping object is nil")
	}
	if kind := obj.GetKind(); kind != "" && kind != PathMappingKind {
		return pathutil.Rule{}, fmt.Errorf("unexpected kind %s, want %s", kind, PathMappingKind)
	}

	var rule pathutil.Rule
	fields := []struct {
		name string
		dst  *string
	}{
		{"logicalBase", &rule.LogicalBase},
		{"logicalSeparator", &rule.LogicalSeparator},
		{"fsBase", &rule.FSBase},
		{"fsSeparator", &rule.FSSeparator},
		{"fileExtension", &rule.FileExtension},
	}
	for _, f := range fields {
		value, _, err := unstructured.NestedString(obj.Object, "spec", f.name)
		if err != nil {
			return pathutil.Rule{}, fmt.Errorf("invalid spec.%s: %w", f.name, err)
		}
		*f.dst = value
	}

	return rule, nil
}

// NewDynamicClient builds a dynamic client from a kubeconfig path.
// An empty path falls back to the in-cluster configuration.
func NewDynamicClient(kubeconfig string) (dynamic.Interface, error) {
	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubernetes config: %w", err)
	}
	client, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return client, nil
}

// LoadRuleFromCluster fetches a PathMapping resource and extracts its rule
func LoadRuleFromCluster(ctx context.Context, client dynamic.Interface, namespace, name string) (pathutil.Rule, error) {
	obj, err := client.Resource(PathMappingGVR).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return pathutil.Rule{}, fmt.Errorf("failed to get path mapping %s/%s: %w", namespace, name, err)
	}
	return RuleFromUnstructured(obj)
}
