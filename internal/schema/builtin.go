package schema

// Builtin returns the registry of the bundled cryo-ET step types: the
// import, compose, picking, extraction, and averaging families. Third-party
// tool plugins extend this table at startup via Register.
func Builtin() *Registry {
	r := NewRegistry()
	for _, t := range builtinTypes {
		// Names are unique by construction of the table.
		_ = r.Register(t)
	}
	return r
}

var builtinTypes = []StepType{
	{
		Name:    "ProtImportTs",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "TiltSeries", Datatype: "SetOfTiltSeries"},
			{Name: "outputTiltSeries", Datatype: "SetOfTiltSeries"},
		},
	},
	{
		Name:    "ProtImportTsMovies",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "TiltSeriesM", Datatype: "SetOfTiltSeriesM"},
			{Name: "outputTiltSeriesM", Datatype: "SetOfTiltSeriesM"},
		},
	},
	{
		Name:    "ProtImportTomograms",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "Tomograms", Datatype: "SetOfTomograms"},
			{Name: "outputTomograms", Datatype: "SetOfTomograms"},
		},
	},
	{
		Name:    "ProtImportTomomasks",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "TomoMasks", Datatype: "SetOfTomoMasks"},
		},
	},
	{
		Name:    "ProtImportCoordinates3D",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "Coordinates", Datatype: "SetOfCoordinates3D"},
			{Name: "outputCoordinates", Datatype: "SetOfCoordinates3D"},
		},
	},
	{
		Name:    "ProtImportSubTomograms",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "Subtomograms", Datatype: "SetOfSubTomograms"},
			{Name: "outputSubTomograms", Datatype: "SetOfSubTomograms"},
		},
	},
	{
		Name:    "ProtImportTsCTF",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "CTFs", Datatype: "SetOfCTFTomoSeries"},
		},
	},
	{
		Name:    "ProtComposeTS",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "TiltSeries", Datatype: "SetOfTiltSeries"},
		},
	},
	{
		Name:    "ProtComposeCTF",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "CTFs", Datatype: "SetOfCTFTomoSeries"},
		},
	},
	{
		Name:    "ProtTsAlign",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "TiltSeries", Datatype: "SetOfTiltSeries"},
			{Name: "InterpolatedTiltSeries", Datatype: "SetOfTiltSeries"},
		},
	},
	{
		Name:    "ProtTsReconstruct",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "Tomograms", Datatype: "SetOfTomograms"},
		},
	},
	{
		Name:    "ProtTomoPicking",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "Coordinates", Datatype: "SetOfCoordinates3D"},
		},
	},
	{
		Name:    "ProtTomoExtractCoords",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "Coordinates", Datatype: "SetOfCoordinates3D"},
		},
	},
	{
		Name:    "ProtTomoExtractSubtomos",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "Subtomograms", Datatype: "SetOfSubTomograms"},
		},
	},
	{
		Name:    "ProtSubtomoAverage",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "AverageSubTomogram", Datatype: "AverageSubTomogram"},
			{Name: "Subtomograms", Datatype: "SetOfSubTomograms"},
		},
	},
	{
		Name:    "ProtTomoSegmentation",
		Version: "3.10",
		Outputs: []Socket{
			{Name: "TomoMasks", Datatype: "SetOfTomoMasks"},
			{Name: "Meshes", Datatype: "SetOfMeshes"},
		},
	},
}
