package main

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/leodido/fwfeatures"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// featureList is a comma separated list of feature names.
type featureList []fwfeatures.Feature

var _ pflag.Value = (*featureList)(nil)

var featureIdentifierMap = func() map[fwfeatures.Feature][]string {
	ids := make(map[fwfeatures.Feature][]string, len(fwfeatures.FeatureValues()))
	for _, f := range fwfeatures.FeatureValues() {
		ids[f] = []string{f.String()}
	}
	return ids
}()

func (l *featureList) String() string {
	names := make([]string, 0, len(*l))
	for _, f := range *l {
		names = append(names, f.String())
	}

	return strings.Join(names, ",")
}

func (l *featureList) Set(input string) error {
	features, err := parseFeatureList(input)
	if err != nil {
		return err
	}

	*l = append(*l, features...)
	return nil
}

func (l *featureList) Type() string {
	return "feature"
}

// requireList is the value type of --require. Each custom flag field needs
// a type of its own.
type requireList []fwfeatures.Feature

var _ pflag.Value = (*requireList)(nil)

func (l *requireList) String() string {
	fl := featureList(*l)
	return fl.String()
}

func (l *requireList) Set(input string) error {
	features, err := parseFeatureList(input)
	if err != nil {
		return err
	}

	*l = append(*l, features...)
	return nil
}

func (l *requireList) Type() string {
	return "feature"
}

func defineFeatureList(fieldValue reflect.Value, descr string) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*featureList)
	*fieldPtr = nil
	return fieldPtr, descr
}

func defineRequireList(fieldValue reflect.Value, descr string) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*requireList)
	*fieldPtr = nil
	return fieldPtr, descr
}

func decodeRequireList(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	features, err := parseFeatureList(s)
	if err != nil {
		return nil, err
	}
	return requireList(features), nil
}

func decodeFeatureList(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	return parseFeatureList(s)
}

func parseFeatureList(input string) (featureList, error) {
	if strings.TrimSpace(input) == "" {
		return featureList{}, nil
	}

	parts := strings.Split(input, ",")
	features := make(featureList, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}

		var feature fwfeatures.Feature
		enumValue := enumflag.New(&feature, "fwfeatures.Feature", featureIdentifierMap, enumflag.EnumCaseInsensitive)
		if err := enumValue.Set(name); err != nil {
			return nil, fmt.Errorf("unknown feature: %q (available: %s)", name, availableFeatures())
		}

		features = append(features, feature)
	}

	return features, nil
}

// completeFeatureList suggests feature names for the last element of a
// comma separated list, skipping names already given.
func completeFeatureList(toComplete string) []string {
	prefix, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, partial = toComplete[:i+1], toComplete[i+1:]
	}

	selected := make(map[string]bool)
	for _, part := range strings.Split(prefix, ",") {
		if f, err := fwfeatures.ParseFeature(part); err == nil {
			selected[f.String()] = true
		}
	}

	partial = strings.ToLower(strings.TrimSpace(partial))
	candidates := make([]string, 0, len(fwfeatures.FeatureValues()))
	for _, name := range fwfeatures.FeatureNames() {
		if selected[name] || !strings.HasPrefix(name, partial) {
			continue
		}
		candidates = append(candidates, prefix+name)
	}
	return candidates
}
