/*
Command nicerbgml estimates the background spectrum of a NICER observation
with a machine learning model of background states.

Contents

Version 0.1.t4n20

  Program overview
  Command line usage
  Configuring file locations
  File formats
  Algorithm outline
  Related commands


Program overview

Input is an observation directory as distributed by the HEASARC archive,
named by its obsID, containing at least the filter (MKF) file under auxil/
and the cleaned event file under xti/event_cl/.  Output is a background
spectrum, <obsID>/spec/spec.b.pha, suitable for use with the source
spectrum in XSPEC.

HEASoft must be installed and initialized.  The programs fcurve, fselect,
and mathpha are run as subprocesses.

Sample run:

  $ nicerbgml 1234567890
  reading model data ...
  ... Done
  --------------------
  reading MKF data ...
  ... Done
  --------------------
  getting model predictions ...
  class    weight
      3  0.051948
      7  0.311688
     12  0.636364
  ... Done
  --------------------
  mathpha "0.05195*spec.3.pha+0.3117*spec.7.pha+0.6364*spec.12.pha" R spec.b.pha CALC NULL 0 clobber=yes
  Background file 1234567890/spec/spec.b.pha created successfully
  --------------------

Binned MKF data, ni.t4.mkf, are left in <obsID>/spec as well.

Command nicerbgml2 is the same program for second generation models.  It
reprocesses the observation with nicerl2 first, adding geomagnetic indices
to the MKF file.  It takes the geomagnetic data directory as a second
argument:

  nicerbgml2 [options] <obsID> <kpDir>


Command line usage

  nicerbgml [options] <obsID>    estimate the background of an observation
  nicerbgml -h                   display help and quick reference
  nicerbgml -v                   display version and copyright

Options:

  --dataDir <path>     directory of the model and basis spectra
  --modelFile <file>   model bundle

Options may be given before or after the obsID.


Configuring file locations

The data directory holds the model bundle, model.npz by default, and the
basis spectra spec.1.pha, spec.2.pha, and so on, one per background state.
It is nicerBgML in the current directory by default.

A model file given with --modelFile is looked up first as given, then in
the data directory.

Defaults can be set in the environment:

  NICERBGML_DATADIR     default for --dataDir
  NICERBGML_MODELFILE   default for --modelFile
  NICERBGML_LOGLEVEL    logging level, one of debug, info, warn, error

A file .env in the current directory, of lines KEY=value, is read at
startup.  Variables already set in the environment take precedence.


File formats

The model bundle is a zip archive of JSON documents:

  mod.json        the classifier
  XPreProc.json   preprocessing steps applied to features
  tBin.json       time bin size in seconds
  mkfCols.json    MKF columns binned and used as features
  mpuFilter.json  detector module selection, optional

Classifiers are k-means, Gaussian mixture, or linear, tagged by "kind".
Preprocessing steps are standard, minmax, pca, or log10 scaling.
Command mkbundle assembles a bundle from these documents.

mkfCols is either a single string, passed to fcurve as is, or a list of
column names.  With a string, features are every binned column between
TIME and FRACEXP.  With a list, features are the named columns in order.

mpuFilter is either a description string or an object such as

  {"exclude": [14, 34], "minActive": 38}

giving the detectors to exclude and the minimum number of active
detectors for reprocessing.

Spectra are OGIP PHA files.  The output is written by mathpha.


Algorithm outline

1.  The MKF file is binned at the model's bin size over the good time
intervals of the cleaned event file with fcurve.  Bins with no exposure
are dropped with fselect.  If filtering fails, the unfiltered bins are
read and filtered here instead.

2.  Each bin is classified as one of the model's background states after
preprocessing of its features.  If there are no bins the program stops
with no output.

3.  The weight of a state is the fraction of bins classified as that state.
States with no bins are omitted.

4.  The basis spectra of the states present are summed, scaled by their
weights, with mathpha.  The result is moved to <obsID>/spec.


Related commands

  mkbundle    assemble a model bundle from JSON documents
  bgweights   compute state weights and the mathpha expression from labels

-------------
Public domain.
*/
package main
