/*
Command mkbundle assembles a model bundle for nicerbgml from JSON
documents exported from training.

Usage

Command line:

  mkbundle [options] <mod.json> <XPreProc.json>
  mkbundle -v                        Display version and copyright.

Options:

  -o <file>      output bundle, default model.npz
  -tbin <sec>    time bin width in seconds, default 4
  -cols <list>   MKF columns, comma separated
  -list          store the columns as a list of names
  -mpu <file>    detector module filter document

Input

mod.json is the classifier, an object tagged with its kind:

  {"kind": "kmeans", "centers": [[...], ...]}
  {"kind": "gmm", "weights": [...], "means": [[...], ...],
   "covarianceType": "diag", "covariances": [[...], ...]}
  {"kind": "linear", "coef": [[...], ...], "intercept": [...]}

XPreProc.json is a list of preprocessing steps applied in order:

  [{"kind": "standard", "mean": [...], "scale": [...]},
   {"kind": "pca", "mean": [...], "components": [[...], ...]}]

Both documents are decoded and checked before they are written.

Columns

Without -list the -cols value is stored as a single string, for first
generation models.  nicerbgml passes it to fcurve as is and takes the
features positionally.  With -list it is stored as a list of names, for
second generation models, and features are selected by name.

The -mpu document is either a description string or an object
{"exclude": [...], "minActive": n}.  Without -mpu, modules 14 and 34 are
excluded and 38 active modules are required.

Output

The bundle is a zip archive of the members mod.json, XPreProc.json,
tBin.json, mpuFilter.json, and mkfCols.json.  An existing file is
replaced.
*/
package main
